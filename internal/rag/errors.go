package rag

import "errors"

var (
	// ErrEmptyCorpus aborts an ingest when no chunks survive extraction and
	// cleaning. The prior corpus generation stays active.
	ErrEmptyCorpus = errors.New("no chunks survived ingestion")

	// ErrIndexNotReady rejects queries issued before any successful ingest.
	ErrIndexNotReady = errors.New("no documents processed")

	// ErrQueryEmpty rejects blank query strings before they reach the index.
	ErrQueryEmpty = errors.New("query cannot be empty")
)

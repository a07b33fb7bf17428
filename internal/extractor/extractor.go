// Package extractor turns raw document bytes into plain text, dispatching on a
// declared or inferred media type.
package extractor

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
)

// Media types accepted by Extract.
const (
	MediaTypePDF      = "application/pdf"
	MediaTypeText     = "text/plain"
	MediaTypeMarkdown = "text/markdown"
	MediaTypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypePPTX     = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	MediaTypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MediaTypeODS      = "application/vnd.oasis.opendocument.spreadsheet"
)

// ErrUnsupportedFormat marks a media type no extractor handles.
var ErrUnsupportedFormat = errors.New("unsupported media type")

// ExtractionError reports a parser failure on one specific document.
type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// File is one document handed to the extractor. MediaType may be empty, in
// which case it is inferred from the file extension.
type File struct {
	Name      string
	MediaType string
	Data      []byte
}

var extensionTypes = map[string]string{
	".pdf":  MediaTypePDF,
	".txt":  MediaTypeText,
	".md":   MediaTypeMarkdown,
	".docx": MediaTypeDOCX,
	".pptx": MediaTypePPTX,
	".xlsx": MediaTypeXLSX,
	".ods":  MediaTypeODS,
}

// InferMediaType maps a file name's extension to a media type, or "" when the
// extension is unknown.
func InferMediaType(name string) string {
	return extensionTypes[strings.ToLower(filepath.Ext(name))]
}

// Extract produces the plain text of f. Unknown media types fail with
// ErrUnsupportedFormat; malformed content fails with an *ExtractionError
// carrying the cause.
func Extract(f File) (string, error) {
	mediaType := f.MediaType
	if mediaType == "" {
		mediaType = InferMediaType(f.Name)
	}

	var text string
	var err error
	switch mediaType {
	case MediaTypePDF:
		text, err = extractPDF(f.Data)
	case MediaTypeText:
		text = decodePlain(f.Data)
	case MediaTypeMarkdown:
		text, err = extractMarkdown(f.Data)
	case MediaTypeDOCX:
		text, err = extractDOCX(f.Data)
	case MediaTypePPTX:
		text, err = extractPPTX(f.Data)
	case MediaTypeXLSX:
		text, err = extractXLSX(f.Data)
	case MediaTypeODS:
		text, err = extractODS(f.Data)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, mediaType)
	}
	if err != nil {
		return "", &ExtractionError{Source: f.Name, Err: err}
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var text strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		text.WriteString(pageText)
		text.WriteString("\n")
	}
	return text.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer r.Close()

	// GetContent returns the document XML; the visible text lives in w:t runs.
	return extractTextFromXML(r.Editable().GetContent(), "w:t"), nil
}

func extractPPTX(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, file := range zr.File {
		if !strings.HasPrefix(file.Name, "ppt/slides/slide") {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			continue
		}
		slide, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			continue
		}
		text.WriteString(extractTextFromXML(string(slide), "a:t"))
		text.WriteString("\n")
	}
	return text.String(), nil
}

func extractXLSX(data []byte) (string, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return "", err
	}

	var text strings.Builder
	for _, sheet := range f.Sheets {
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
	}
	return text.String(), nil
}

func extractODS(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer f.Close()

	var text strings.Builder
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
	}
	return text.String(), nil
}

// extractTextFromXML pulls the contents of every <tag>...</tag> element,
// tolerating attributes on the opening tag.
func extractTextFromXML(xmlContent, tag string) string {
	var text strings.Builder
	closing := "</" + tag + ">"
	parts := strings.Split(xmlContent, "<"+tag)
	for i, part := range parts {
		if i == 0 {
			continue
		}
		if part == "" || (part[0] != '>' && part[0] != ' ') {
			continue
		}
		start := strings.IndexByte(part, '>')
		if start < 0 {
			continue
		}
		if endIdx := strings.Index(part[start+1:], closing); endIdx >= 0 {
			text.WriteString(part[start+1:start+1+endIdx] + " ")
		}
	}
	return text.String()
}

// decodePlain interprets data as UTF-8, falling back to Latin-1 so legacy
// exports still yield text instead of an error.
func decodePlain(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return string(runes)
}

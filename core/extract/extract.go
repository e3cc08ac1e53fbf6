// Package extract pulls plain text out of uploaded policy documents.
// PDF and DOCX are supported, legacy binary .doc is rejected with a
// conversion hint.
package extract

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedFormat is returned for MIME types the extractor cannot handle.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// ExtractionError wraps failures that occur while parsing a supported format,
// including documents that parse but contain no extractable text.
type ExtractionError struct {
	MimeType string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.MimeType, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeDOC  = "application/msword"
)

// Extract dispatches on the MIME type and returns the document's plain text.
// The returned text keeps paragraph breaks so the chunker can detect section
// boundaries. An empty result after trimming counts as a failed extraction.
func Extract(data []byte, mimeType string) (string, error) {
	var text string
	var err error

	switch mimeType {
	case mimePDF:
		text, err = extractPDF(data)
	case mimeDOCX:
		text, err = extractDOCX(data)
	case mimeDOC:
		return "", fmt.Errorf("%w: legacy .doc files are not supported, convert the document to .docx or .pdf first", ErrUnsupportedFormat)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}
	if err != nil {
		return "", &ExtractionError{MimeType: mimeType, Err: err}
	}

	if strings.TrimSpace(text) == "" {
		return "", &ExtractionError{MimeType: mimeType, Err: errors.New("document contains no extractable text")}
	}
	return text, nil
}

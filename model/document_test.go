package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileTypeFromMIME(t *testing.T) {
	t.Run("PDF MIME type", func(t *testing.T) {
		assert.Equal(t, FileTypePDF, FileTypeFromMIME("application/pdf"))
	})

	t.Run("DOCX MIME type", func(t *testing.T) {
		assert.Equal(t, FileTypeDOCX, FileTypeFromMIME("application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
	})

	t.Run("Legacy DOC MIME type", func(t *testing.T) {
		assert.Equal(t, FileTypeDOC, FileTypeFromMIME("application/msword"))
	})

	t.Run("Unknown MIME type", func(t *testing.T) {
		assert.Equal(t, FileTypeUnsupported, FileTypeFromMIME("image/png"))
		assert.Equal(t, FileTypeUnsupported, FileTypeFromMIME(""))
	})
}

func TestFileTypeMIMEType(t *testing.T) {
	t.Run("Round trip for supported types", func(t *testing.T) {
		for _, ft := range []FileType{FileTypePDF, FileTypeDOCX, FileTypeDOC} {
			assert.Equal(t, ft, FileTypeFromMIME(ft.MIMEType()))
		}
	})

	t.Run("Unsupported type has no MIME type", func(t *testing.T) {
		assert.Empty(t, FileTypeUnsupported.MIMEType())
	})
}

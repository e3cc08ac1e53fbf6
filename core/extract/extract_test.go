package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDOCX assembles a minimal in-memory .docx archive.
func buildDOCX(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="xml" ContentType="application/xml"/>
</Types>`))
	require.NoError(t, err)

	if documentXML != "" {
		doc, err := w.Create("word/document.xml")
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

const sampleDocumentXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>ANNUAL LEAVE POLICY</w:t></w:r></w:p>
<w:p><w:r><w:t>Employees accrue </w:t></w:r><w:r><w:t>2.5 days per month.</w:t></w:r></w:p>
<w:p><w:r><w:t>Unused days expire at year end.</w:t></w:r></w:p>
</w:body>
</w:document>`

func TestExtract(t *testing.T) {
	t.Run("Docx paragraphs become separate lines", func(t *testing.T) {
		data := buildDOCX(t, sampleDocumentXML)

		text, err := Extract(data, mimeDOCX)

		require.NoError(t, err)
		assert.Equal(t, "ANNUAL LEAVE POLICY\nEmployees accrue 2.5 days per month.\nUnused days expire at year end.", text)
	})

	t.Run("Docx with split runs joins text within a paragraph", func(t *testing.T) {
		data := buildDOCX(t, sampleDocumentXML)

		text, err := Extract(data, mimeDOCX)

		require.NoError(t, err)
		assert.Contains(t, text, "Employees accrue 2.5 days per month.")
	})

	t.Run("Docx without text fails extraction", func(t *testing.T) {
		data := buildDOCX(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body><w:p></w:p></w:body>
</w:document>`)

		_, err := Extract(data, mimeDOCX)

		require.Error(t, err)
		var extractionErr *ExtractionError
		assert.ErrorAs(t, err, &extractionErr)
	})

	t.Run("Docx without document xml fails extraction", func(t *testing.T) {
		data := buildDOCX(t, "")

		_, err := Extract(data, mimeDOCX)

		require.Error(t, err)
		var extractionErr *ExtractionError
		assert.ErrorAs(t, err, &extractionErr)
	})

	t.Run("Corrupt docx bytes fail extraction", func(t *testing.T) {
		_, err := Extract([]byte("not a zip archive"), mimeDOCX)

		require.Error(t, err)
		var extractionErr *ExtractionError
		assert.ErrorAs(t, err, &extractionErr)
	})

	t.Run("Corrupt pdf bytes fail extraction", func(t *testing.T) {
		_, err := Extract([]byte("%PDF-1.7 but otherwise garbage"), mimePDF)

		require.Error(t, err)
		var extractionErr *ExtractionError
		assert.ErrorAs(t, err, &extractionErr)
	})

	t.Run("Legacy doc format is rejected with conversion hint", func(t *testing.T) {
		_, err := Extract([]byte{0xD0, 0xCF, 0x11, 0xE0}, mimeDOC)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		assert.Contains(t, err.Error(), "convert")
	})

	t.Run("Unknown mime type is rejected", func(t *testing.T) {
		_, err := Extract([]byte("plain text"), "text/plain")

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
		assert.Contains(t, err.Error(), "text/plain")
	})
}

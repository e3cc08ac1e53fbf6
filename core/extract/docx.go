package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// documentXML mirrors the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []docxParagraph `xml:"p"`
	} `xml:"body"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text []docxText `xml:"t"`
}

type docxText struct {
	Content string `xml:",chardata"`
}

// extractDOCX opens the file as a ZIP archive and walks the paragraph, run
// and text elements of word/document.xml. Each paragraph becomes one line, so
// headings keep their own line for the chunker.
func extractDOCX(data []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}

		var doc documentXML
		if err := xml.Unmarshal(content, &doc); err != nil {
			return "", err
		}

		var builder strings.Builder
		for i, paragraph := range doc.Body.Paragraphs {
			if i > 0 {
				builder.WriteString("\n")
			}
			for _, run := range paragraph.Runs {
				for _, text := range run.Text {
					builder.WriteString(text.Content)
				}
			}
		}
		return builder.String(), nil
	}
	return "", errors.New("archive does not contain word/document.xml")
}

package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// SectionChunk is one window of section text together with the title of the
// section it was cut from.
type SectionChunk struct {
	Text         string
	SectionTitle string
}

// ChunkFunc splits extracted document text into ordered section chunks.
// documentTitle seeds the active section title for text before the first
// detected heading.
type ChunkFunc func(text string, documentTitle string) ([]SectionChunk, error)

var (
	// Extraction often glues a heading onto a trailing page number, or two
	// headings onto one line with only spacing between them. Both get a line
	// break forced in so the classifier sees them separately.
	pageNumberBreak = regexp.MustCompile(`(\S{1,40})[ \t]{2,}(\d{1,4})(\s|$)`)
	inlineCapBreak  = regexp.MustCompile(`([a-z.,;:!?])[ \t]{2,}([A-Z])`)
	blankLineRuns   = regexp.MustCompile(`\n\s*\n+`)
)

// SectionChunker returns a chunker that detects section headings with the
// isSectionTitle heuristic and slices each section into overlapping windows
// of size characters, advancing size-overlap per step.
func SectionChunker(size int, overlap int) ChunkFunc {
	return func(text string, documentTitle string) ([]SectionChunk, error) {
		if size <= 0 {
			return nil, fmt.Errorf("chunk size must be positive, got %d", size)
		}
		if overlap < 0 {
			return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
		}

		if strings.TrimSpace(text) == "" {
			return []SectionChunk{}, nil
		}

		lines := splitLines(text)

		var chunks []SectionChunk
		var buffer []string
		activeTitle := documentTitle

		flush := func() {
			if len(buffer) == 0 {
				return
			}
			sectionText := strings.Join(buffer, "\n")
			for _, window := range sliceWindows(sectionText, size, overlap) {
				chunks = append(chunks, SectionChunk{Text: window, SectionTitle: activeTitle})
			}
			buffer = nil
		}

		for _, line := range lines {
			if isSectionTitle(line) {
				flush()
				activeTitle = line
				buffer = []string{line}
				continue
			}
			buffer = append(buffer, line)
		}
		flush()

		return chunks, nil
	}
}

// splitLines normalizes line endings, splits the text into blocks on runs of
// blank lines, forces breaks at glued heading boundaries and returns the
// trimmed non-empty lines in document order.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	blocks := blankLineRuns.Split(text, -1)

	var lines []string
	for _, block := range blocks {
		block = pageNumberBreak.ReplaceAllString(block, "$1\n$2$3")
		block = inlineCapBreak.ReplaceAllString(block, "$1\n$2")

		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				lines = append(lines, line)
			}
		}
	}
	return lines
}

var numberedHeading = regexp.MustCompile(`^(\d+(\.\d+)*\.?|[A-Za-z]\.|\(?[ivxIVX]+\)?\.?|(PART|CHAPTER|SECTION|APPENDIX)\s+\S+)(\s|$)`)

// isSectionTitle reports whether a line looks like a policy section heading.
// The heuristic accepts short lines that are mostly uppercase, carry a
// numbering or structural keyword prefix, or read as a title-case phrase.
func isSectionTitle(line string) bool {
	if len(line) >= 120 {
		return false
	}
	if strings.EqualFold(strings.TrimSpace(line), "TABLE OF CONTENTS") {
		return false
	}

	words := strings.Fields(line)
	if len(words) >= 15 {
		return false
	}

	letters := 0
	upper := 0
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	// Bare numbers, typically page numbers split off a heading, are no titles.
	if letters == 0 {
		return false
	}
	if letters >= 3 && float64(upper)/float64(letters) > 0.5 {
		return true
	}

	if numberedHeading.MatchString(line) {
		return true
	}

	return isProbableTitleCase(words)
}

// isProbableTitleCase accepts phrases of 2 to 9 words where at least half
// start with an uppercase letter and the phrase does not end a sentence.
func isProbableTitleCase(words []string) bool {
	if len(words) < 2 || len(words) > 9 {
		return false
	}

	last := words[len(words)-1]
	switch last[len(last)-1] {
	case '.', '!', '?', ',', ';', ':':
		return false
	}

	capitalized := 0
	for _, word := range words {
		r := []rune(word)[0]
		if unicode.IsUpper(r) {
			capitalized++
		}
	}
	return float64(capitalized)/float64(len(words)) >= 0.5
}

// sliceWindows cuts sectionText into windows of size runes stepping by
// size-overlap. A tail shorter than size/4 is merged into the final window
// instead of being emitted as a fragment. When overlap >= size the window
// cannot advance, so the text is returned as a single window.
func sliceWindows(sectionText string, size int, overlap int) []string {
	runes := []rune(sectionText)
	if len(runes) <= size {
		return []string{sectionText}
	}

	step := size - overlap
	if step <= 0 {
		return []string{sectionText}
	}

	var windows []string
	for start := 0; start < len(runes); start += step {
		end := start + size
		if end >= len(runes) {
			windows = append(windows, string(runes[start:]))
			break
		}
		// When the remainder after this window is below size/4, extend the
		// window to the end instead of producing a tiny trailing chunk.
		if len(runes)-(start+step) < size/4 {
			windows = append(windows, string(runes[start:]))
			break
		}
		windows = append(windows, string(runes[start:end]))
	}
	return windows
}

// Package answer turns fused retrieval results into a grounded chat
// completion with source provenance.
package answer

import (
	"fmt"
	"strings"

	"github.com/alexphommasathit/policyqa/model"
)

// FormatContext renders the fused chunks into the labeled blocks the model
// receives as context. Blocks keep fused-rank order and are separated by
// blank lines.
func FormatContext(results []*model.RankedResult) string {
	blocks := make([]string, 0, len(results))
	for i, result := range results {
		blocks = append(blocks, fmt.Sprintf("%s\n%s", formatHeader(i+1, result), result.ChunkText))
	}
	return strings.Join(blocks, "\n\n")
}

func formatHeader(number int, result *model.RankedResult) string {
	var header strings.Builder
	fmt.Fprintf(&header, "Chunk %d (Document: %s", number, result.Metadata.DocumentTitle)
	if result.Metadata.SectionTitle != nil && *result.Metadata.SectionTitle != "" {
		fmt.Fprintf(&header, ", Section: %s", *result.Metadata.SectionTitle)
	}
	fmt.Fprintf(&header, ", Status: %s", result.Metadata.DocumentStatus)
	if result.Similarity != nil {
		fmt.Fprintf(&header, ", Similarity: %.2f)", *result.Similarity)
	} else {
		header.WriteString(", Similarity: N/A)")
	}
	return header.String()
}

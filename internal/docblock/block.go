package docblock

import (
	"fmt"
	"strings"
)

// BlockType distinguishes the two kinds of document blocks.
type BlockType string

const (
	Paragraph BlockType = "paragraph"
	Table     BlockType = "table"
)

// Block is a normalized representation of one document block, in body order.
// Paragraph blocks carry Text; table blocks carry Rows and an empty Text.
type Block struct {
	Type BlockType  `json:"type"`
	Text string     `json:"text"`
	Rows [][]string `json:"rows,omitempty"`
}

const previewLimit = 200

// Preview returns a short orientation string for the block: the first table
// row joined with " | ", or the trimmed paragraph text, capped at 200 runes.
func (b Block) Preview() string {
	if b.Type == Table {
		if len(b.Rows) > 0 {
			return truncateRunes(strings.Join(b.Rows[0], " | "), previewLimit)
		}
		return "Таблица"
	}
	return truncateRunes(strings.TrimSpace(b.Text), previewLimit)
}

// RowPreview returns a preview of a single table row.
func (b Block) RowPreview(i int) string {
	if b.Type != Table || i < 0 || i >= len(b.Rows) {
		return b.Preview()
	}
	return truncateRunes(strings.Join(b.Rows[i], " | "), previewLimit)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// PromptLines renders blocks as the enumerated lines shown to the LLM.
// Line indices are block indices, so a line number in the model's answer maps
// directly back to an anchor. Paragraphs render verbatim; tables render as
// "TABLE: cell | cell / cell | cell". Empty blocks render as empty strings so
// the numbering stays aligned.
func PromptLines(blocks []Block) []string {
	lines := make([]string, len(blocks))
	for i, b := range blocks {
		switch b.Type {
		case Table:
			var rows []string
			for _, row := range b.Rows {
				var cells []string
				for _, cell := range row {
					if c := strings.TrimSpace(cell); c != "" {
						cells = append(cells, c)
					}
				}
				if len(cells) > 0 {
					rows = append(rows, strings.Join(cells, " | "))
				}
			}
			if len(rows) == 0 {
				lines[i] = "TABLE: (пустая таблица)"
			} else {
				lines[i] = "TABLE: " + strings.Join(rows, " / ")
			}
		default:
			lines[i] = strings.ReplaceAll(strings.TrimSpace(b.Text), "\n", " ")
		}
	}
	return lines
}

// EnumerateLines formats prompt lines with zero-padded indices, skipping empty
// lines, truncated to at most maxLines rendered lines (0 means no limit).
func EnumerateLines(lines []string, maxLines int) string {
	var sb strings.Builder
	count := 0
	for i, line := range lines {
		if line == "" {
			continue
		}
		if maxLines > 0 && count >= maxLines {
			break
		}
		if count > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%04d: %s", i, line)
		count++
	}
	if sb.Len() == 0 {
		return "(пустой документ)"
	}
	return sb.String()
}

package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"contractparser/internal/docblock"
)

// DOCXParser handles .docx files.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) ([]docblock.Block, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "contractparser-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	// Walk body items in document order so block indices stay stable.
	var blocks []docblock.Block
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			text := cleanNoise(collapseSpaces(docxParagraphText(it)))
			blocks = append(blocks, docblock.Block{Type: docblock.Paragraph, Text: text})
		case *docx.Table:
			rows := docxTableRows(it)
			if len(rows) > 0 {
				blocks = append(blocks, docblock.Block{Type: docblock.Table, Rows: rows})
			}
		}
	}
	return blocks, nil
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func docxTableRows(table *docx.Table) [][]string {
	var rows [][]string
	for _, row := range table.TableRows {
		var cells []string
		filled := false
		for _, cell := range row.TableCells {
			var fragments []string
			for _, para := range cell.Paragraphs {
				if t := strings.TrimSpace(docxParagraphText(para)); t != "" {
					fragments = append(fragments, t)
				}
			}
			text := strings.Join(fragments, " ")
			if text != "" {
				filled = true
			}
			cells = append(cells, text)
		}
		if filled {
			rows = append(rows, cells)
		}
	}
	return rows
}

package spec

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fumiama/go-docx"
)

var stemSanitizeRe = regexp.MustCompile(`[^0-9A-Za-zА-Яа-я_-]+`)

func sanitizeStem(value string) string {
	sanitized := strings.Trim(stemSanitizeRe.ReplaceAllString(value, "_"), "._")
	if sanitized == "" {
		return "specification"
	}
	return sanitized
}

// ExportFilename derives the download name for a cropped specification file.
func ExportFilename(sourceName, heading string) string {
	stem := strings.TrimSuffix(filepath.Base(sourceName), filepath.Ext(sourceName))
	if stem == "" {
		stem = heading
	}
	return sanitizeStem(stem) + "_specification.docx"
}

// ExportDOCX builds a standalone DOCX containing the section heading and the
// extracted tables. Returns an error when no table carries rows.
func ExportDOCX(resp Response) ([]byte, error) {
	var tables []Table
	for _, t := range resp.Tables {
		if len(t.Rows) > 0 {
			tables = append(tables, t)
		}
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: no table rows to export", ErrNotFound)
	}

	w := docx.New().WithDefaultTheme()

	if heading := strings.TrimSpace(resp.Heading); heading != "" {
		w.AddParagraph().AddText(heading).Size("28")
	}

	for _, t := range tables {
		columnCount := 0
		for _, row := range t.Rows {
			if len(row) > columnCount {
				columnCount = len(row)
			}
		}
		if columnCount == 0 {
			continue
		}

		tbl := w.AddTable(len(t.Rows), columnCount, 0, nil)
		for i, row := range tbl.TableRows {
			for j, cell := range row.TableCells {
				value := ""
				if j < len(t.Rows[i]) {
					value = t.Rows[i][j]
				}
				cell.AddParagraph().AddText(value)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}

package parser

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"contractparser/internal/docblock"
)

// TextParser handles plain text contract exports. Lines containing pipe
// separators form table blocks; everything else becomes paragraph blocks.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) ([]docblock.Block, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return BlocksFromText(decodeText(data)), nil
}

// decodeText interprets bytes as UTF-8, falling back to Windows-1251 for
// legacy contract exports.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// BlocksFromText splits raw text into paragraph and table blocks. Consecutive
// lines with "|" separators accumulate into one table; blank lines flush it.
func BlocksFromText(text string) []docblock.Block {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var blocks []docblock.Block
	var table [][]string

	flushTable := func() {
		if len(table) > 0 {
			blocks = append(blocks, docblock.Block{Type: docblock.Table, Rows: table})
			table = nil
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		clean := cleanNoise(line)
		if clean == "" {
			flushTable()
			continue
		}
		if strings.Contains(line, "|") {
			var cells []string
			for _, col := range strings.Split(line, "|") {
				if c := strings.TrimSpace(col); c != "" {
					cells = append(cells, c)
				}
			}
			if len(cells) > 0 {
				table = append(table, cells)
				continue
			}
		}
		flushTable()
		blocks = append(blocks, docblock.Block{Type: docblock.Paragraph, Text: clean})
	}
	flushTable()

	return blocks
}

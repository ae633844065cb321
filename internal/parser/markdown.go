package parser

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"contractparser/internal/docblock"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) ([]docblock.Block, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	reader := text.NewReader(src)
	doc := md.Parser().Parse(reader)

	var blocks []docblock.Block
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			title := cleanNoise(string(node.Text(src)))
			if title != "" {
				blocks = append(blocks, docblock.Block{Type: docblock.Paragraph, Text: title})
			}
		default:
			t := extractText(n, src)
			if t == "" {
				continue
			}
			// Pipe rows inside a block become table blocks, mirroring the
			// plain-text loader, so GFM tables survive without an extension.
			blocks = append(blocks, BlocksFromText(t)...)
		}
	}
	return blocks, nil
}

// extractText gets the text content of a goldmark AST node. Leaf blocks are
// read from their raw line segments; container blocks recurse.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
		return strings.TrimSpace(buf.String())
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			if part := extractText(c, src); part != "" {
				if buf.Len() > 0 {
					buf.WriteByte('\n')
				}
				buf.WriteString(part)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

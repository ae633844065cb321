package parser

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"contractparser/internal/docblock"
)

// Parser converts raw document bytes into an ordered block sequence.
type Parser interface {
	Parse(r io.Reader, filename string) ([]docblock.Block, error)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: true}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// Load parses in-memory document bytes into blocks.
func Load(filename string, data []byte) ([]docblock.Block, error) {
	p, err := ForFile(filename)
	if err != nil {
		return nil, err
	}
	return p.Parse(bytes.NewReader(data), filename)
}

var (
	guillemetRe  = regexp.MustCompile(`[«»]`)
	underscoreRe = regexp.MustCompile(`_{2,}`)
	dashRunRe    = regexp.MustCompile(`-{3,}`)
	ellipsisRe   = regexp.MustCompile(`\.{3,}`)
	spaceRunRe   = regexp.MustCompile(`\s{2,}`)
)

// cleanNoise strips placeholder symbols that surround headings in contract
// templates: guillemets, fill-in underscores, long dash runs and ellipses,
// then collapses whitespace.
func cleanNoise(text string) string {
	text = guillemetRe.ReplaceAllString(text, "")
	text = underscoreRe.ReplaceAllString(text, " ")
	text = dashRunRe.ReplaceAllString(text, " ")
	text = ellipsisRe.ReplaceAllString(text, " ")
	text = spaceRunRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

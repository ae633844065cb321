// Package spec locates the "Спецификация" section of a contract document:
// its heading, the block anchors bounding the section, and the goods tables
// inside it. Detection is either a deterministic scan over parsed blocks or
// a delegation to the LLM (neural.go).
package spec

import (
	"errors"
	"fmt"

	"contractparser/internal/docblock"
)

// ErrNotFound reports that no specification section could be detected.
var ErrNotFound = errors.New("specification section not found")

// ErrBadModelReply reports that the LLM reply was not valid JSON of the
// expected shape.
var ErrBadModelReply = errors.New("model returned unexpected reply")

func notFound(reason string) error {
	if reason == "" {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %s", ErrNotFound, reason)
}

// Anchor is an index+type pointer identifying where a section or table
// begins or ends within the block sequence.
type Anchor struct {
	Index   int                `json:"index"`
	Type    docblock.BlockType `json:"type"`
	Preview string             `json:"preview"`
}

// Table describes one goods table found inside the specification section.
type Table struct {
	Index       int        `json:"index"`
	RowCount    int        `json:"row_count"`
	ColumnCount int        `json:"column_count"`
	Preview     string     `json:"preview"`
	StartAnchor Anchor     `json:"start_anchor"`
	EndAnchor   Anchor     `json:"end_anchor"`
	Rows        [][]string `json:"rows"`
}

// Response is the extraction result returned by both the rule-based and the
// neural extractor.
type Response struct {
	Heading     string  `json:"heading"`
	StartAnchor Anchor  `json:"start_anchor"`
	EndAnchor   Anchor  `json:"end_anchor"`
	Tables      []Table `json:"tables"`
}

// TableRegion points at a table block inside the located section.
type TableRegion struct {
	Index      int
	StartIndex int
	EndIndex   int
	Block      docblock.Block
}

// Result is the raw outcome of the rule-based scan, before conversion into
// the API response shape.
type Result struct {
	Heading    string
	StartIndex int
	EndIndex   int
	Tables     []TableRegion
	StartBlock docblock.Block
	EndBlock   docblock.Block
}

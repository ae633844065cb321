package spec

import (
	"strings"

	"contractparser/internal/docblock"
)

func makeAnchor(index int, block docblock.Block, fallback string) Anchor {
	preview := block.Preview()
	if preview == "" {
		preview = fallback
	}
	return Anchor{Index: index, Type: block.Type, Preview: preview}
}

func makeTable(region TableRegion) Table {
	rows := region.Block.Rows
	preview := "Таблица"
	endPreview := preview
	if len(rows) > 0 {
		preview = truncatePreview(strings.Join(rows[0], " | "))
		endPreview = truncatePreview(strings.Join(rows[len(rows)-1], " | "))
	}

	columnCount := 0
	for _, row := range rows {
		if len(row) > columnCount {
			columnCount = len(row)
		}
	}

	start := Anchor{Index: region.StartIndex, Type: region.Block.Type, Preview: preview}
	end := Anchor{Index: region.EndIndex, Type: region.Block.Type, Preview: endPreview}

	return Table{
		Index:       region.Index,
		RowCount:    len(rows),
		ColumnCount: columnCount,
		Preview:     preview,
		StartAnchor: start,
		EndAnchor:   end,
		Rows:        rows,
	}
}

func truncatePreview(s string) string {
	r := []rune(s)
	if len(r) <= 200 {
		return s
	}
	return string(r[:200])
}

// BuildResponse converts a located section into the API response shape.
func BuildResponse(result *Result) Response {
	startAnchor := makeAnchor(result.StartIndex, result.StartBlock, "")
	endAnchor := makeAnchor(result.EndIndex, result.EndBlock, startAnchor.Preview)

	tables := make([]Table, 0, len(result.Tables))
	for _, region := range result.Tables {
		tables = append(tables, makeTable(region))
	}

	return Response{
		Heading:     result.Heading,
		StartAnchor: startAnchor,
		EndAnchor:   endAnchor,
		Tables:      tables,
	}
}

// Extract runs the rule-based detector over blocks and builds the response.
func Extract(blocks []docblock.Block) (Response, error) {
	result, err := Locate(blocks)
	if err != nil {
		return Response{}, err
	}
	return BuildResponse(result), nil
}

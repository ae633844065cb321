package spec

import (
	"strings"
	"unicode"

	"contractparser/internal/docblock"
)

// Paragraph patterns that can open a specification section.
var headingPatterns = []string{
	"пецификац",
	"пецификация №",
	"приложение №",
	"к договору",
	"номенклатура, характеристика",
}

// Paragraph patterns that close the section once tables were seen.
var endPatterns = []string{
	"общая цена",
	"общая сумма",
}

// Locate scans blocks in order and returns the best-ranked specification
// section: every heading candidate is scored by (priority, position) and the
// lowest key wins, so an explicit "Спецификация" heading beats an
// "Приложение" one appearing earlier.
func Locate(blocks []docblock.Block) (*Result, error) {
	var best *Result
	bestPriority, bestIndex := 0, 0

	for idx, block := range blocks {
		if !isHeadingCandidate(block) {
			continue
		}
		tables, endIndex, ok := collectTablesAfterHeading(blocks, idx)
		if !ok || len(tables) == 0 {
			continue
		}

		heading := strings.TrimSpace(block.Text)
		if heading == "" {
			heading = "Спецификация"
		}
		priority := headingPriority(heading)

		if best == nil || priority < bestPriority || (priority == bestPriority && idx < bestIndex) {
			best = &Result{
				Heading:    heading,
				StartIndex: idx,
				EndIndex:   endIndex,
				Tables:     tables,
				StartBlock: block,
				EndBlock:   blocks[endIndex],
			}
			bestPriority, bestIndex = priority, idx
		}
	}

	if best == nil {
		return nil, notFound("в документе не найден раздел 'Спецификация' с таблицами")
	}
	return best, nil
}

func headingPriority(text string) int {
	normalized := strings.ToLower(text)
	switch {
	case strings.Contains(normalized, "спецификац"):
		return 0
	case strings.Contains(normalized, "приложение"):
		return 1
	default:
		return 2
	}
}

func isHeadingCandidate(block docblock.Block) bool {
	if block.Type != docblock.Paragraph {
		return false
	}

	text := strings.ToLower(block.Text)
	if strings.TrimSpace(text) == "" {
		return false
	}

	// A long sentence that merely mentions the specification is body text,
	// not a heading.
	if len(strings.Fields(text)) > 8 && strings.Contains(text, "спецификац") {
		return false
	}

	return containsAny(text, headingPatterns)
}

// collectTablesAfterHeading walks forward from a heading candidate gathering
// qualifying tables until an end-pattern paragraph (kept in the span) or the
// next heading-looking paragraph.
func collectTablesAfterHeading(blocks []docblock.Block, index int) ([]TableRegion, int, bool) {
	var tables []TableRegion
	lastRelevant := index
	foundTables := false

	for cursor := index + 1; cursor < len(blocks); cursor++ {
		block := blocks[cursor]

		if block.Type == docblock.Paragraph {
			text := strings.TrimSpace(block.Text)
			normalized := strings.ToLower(text)

			if text == "" {
				continue
			}
			if foundTables && containsAny(normalized, endPatterns) {
				lastRelevant = cursor
				break
			}
			if foundTables && looksLikeHeading(text) {
				break
			}
			if !foundTables {
				// Allow multi-line headings before the first table.
				continue
			}
			lastRelevant = cursor
			continue
		}

		if block.Type != docblock.Table || len(block.Rows) == 0 {
			continue
		}

		if !IsSpecificationTable(block) {
			if foundTables {
				break
			}
			continue
		}

		tables = append(tables, TableRegion{
			Index:      cursor,
			StartIndex: cursor,
			EndIndex:   cursor,
			Block:      block,
		})
		lastRelevant = cursor
		foundTables = true
	}

	if len(tables) == 0 {
		return nil, 0, false
	}
	if last := tables[len(tables)-1].EndIndex; lastRelevant < last {
		lastRelevant = last
	}
	return tables, lastRelevant, true
}

func looksLikeHeading(text string) bool {
	normalized := strings.TrimSpace(text)
	if normalized == "" {
		return false
	}

	runes := []rune(normalized)
	if len(runes) <= 80 && isAllUpper(normalized) {
		return true
	}
	if strings.HasSuffix(normalized, ":") && len(runes) <= 120 {
		return true
	}
	if strings.HasPrefix(normalized, "Приложение") {
		return true
	}
	return false
}

// isAllUpper reports whether the text equals its own upper-casing, i.e.
// contains no lowercase letters.
func isAllUpper(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

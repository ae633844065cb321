package spec

import (
	"regexp"
	"strings"
	"unicode"

	"contractparser/internal/docblock"
)

// Keyword sets for recognizing goods tables in Russian-language supply
// contracts. Header keywords mark column captions, data keywords mark unit
// and currency mentions in position rows.
var headerKeywords = []string{
	"наименован",
	"характерист",
	"товар",
	"ед.",
	"ед.изм",
	"кол",
	"кол-во",
	"количество",
	"цена",
	"сумм",
	"стоим",
	"срок",
}

var dataKeywords = []string{
	"шт",
	"компл",
	"услуг",
	"руб",
	"eur",
	"usd",
	"парт",
	"лот",
}

var excludeRowPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(^|\s)итог`),
	regexp.MustCompile(`(^|\s)всего`),
	regexp.MustCompile(`(^|\s)общая`),
	regexp.MustCompile(`(^|\s)сумма договора`),
	regexp.MustCompile(`(^|\s)цена`),
}

var whitespaceRe = regexp.MustCompile(`\s+`)

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " ")))
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}

// TableHasGoods reports whether any data row looks like a goods position:
// a unit/currency keyword, or enough digit/letter density to be a priced
// line item. Totals rows and header spill-over are skipped.
func TableHasGoods(rows [][]string) bool {
	headerBand := 2
	if len(rows) < headerBand {
		headerBand = len(rows)
	}

	for index := 1; index < len(rows); index++ {
		row := rows[index]
		combined := normalize(strings.Join(row, " "))
		if combined == "" {
			continue
		}

		excluded := false
		for _, pattern := range excludeRowPatterns {
			if pattern.MatchString(combined) {
				excluded = true
				break
			}
		}
		if excluded {
			continue
		}

		// Ignore multi-line headers that bleed into data rows.
		if index < headerBand && containsAny(combined, headerKeywords) {
			continue
		}

		if containsAny(combined, dataKeywords) {
			return true
		}

		digits := countDigits(combined)
		letters := countLetters(combined)

		if digits >= 3 && letters >= 3 {
			return true
		}

		if digits >= 4 {
			hasNumericCell := false
			hasTextCell := false
			sawCell := false
			for _, cell := range row {
				c := normalize(cell)
				if c == "" {
					continue
				}
				sawCell = true
				if countDigits(c) >= 2 {
					hasNumericCell = true
				}
				if countLetters(c) >= 2 {
					hasTextCell = true
				}
			}
			if sawCell && hasNumericCell && hasTextCell {
				return true
			}
		}
	}

	return false
}

// IsSpecificationTable heuristically determines whether a table block
// belongs to a specification section.
func IsSpecificationTable(block docblock.Block) bool {
	if block.Type != docblock.Table {
		return false
	}

	rows := block.Rows
	if len(rows) < 2 {
		return false
	}

	headerBand := 2
	if len(rows) < headerBand {
		headerBand = len(rows)
	}
	var headerCandidates []string
	for i := 0; i < headerBand; i++ {
		if c := normalize(strings.Join(rows[i], " ")); c != "" {
			headerCandidates = append(headerCandidates, c)
		}
	}
	if len(headerCandidates) == 0 {
		return false
	}

	hasHeaderKeywords := false
	for _, candidate := range headerCandidates {
		if containsAny(candidate, headerKeywords) {
			hasHeaderKeywords = true
			break
		}
	}

	if !hasHeaderKeywords {
		header := strings.Join(headerCandidates, " ")
		hasNumbering := strings.Contains(header, "№") || strings.Contains(header, "#")
		if !hasNumbering {
			filledCells := 0
			for _, cell := range rows[0] {
				if normalize(cell) != "" {
					filledCells++
				}
			}
			if len(rows[0]) < 3 || filledCells <= 1 {
				return false
			}
		}
	}

	return TableHasGoods(rows)
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

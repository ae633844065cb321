package docblock

import (
	"strings"
	"testing"
)

func TestBlockPreview(t *testing.T) {
	para := Block{Type: Paragraph, Text: "  Спецификация №1  "}
	if got := para.Preview(); got != "Спецификация №1" {
		t.Errorf("paragraph preview: expected %q, got %q", "Спецификация №1", got)
	}

	table := Block{Type: Table, Rows: [][]string{{"№", "Товар"}, {"1", "Стул"}}}
	if got := table.Preview(); got != "№ | Товар" {
		t.Errorf("table preview: expected %q, got %q", "№ | Товар", got)
	}

	empty := Block{Type: Table}
	if got := empty.Preview(); got != "Таблица" {
		t.Errorf("empty table preview: expected %q, got %q", "Таблица", got)
	}
}

func TestBlockPreviewTruncatesRunes(t *testing.T) {
	long := strings.Repeat("ф", 300)
	b := Block{Type: Paragraph, Text: long}
	got := b.Preview()
	if runes := []rune(got); len(runes) != 200 {
		t.Errorf("expected 200 runes, got %d", len(runes))
	}
}

func TestPromptLines(t *testing.T) {
	blocks := []Block{
		{Type: Paragraph, Text: "Договор\nпоставки"},
		{Type: Table, Rows: [][]string{{"№", "Товар"}, {"1", "Стул"}}},
		{Type: Paragraph, Text: ""},
		{Type: Table},
	}

	lines := PromptLines(blocks)
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if lines[0] != "Договор поставки" {
		t.Errorf("line 0: got %q", lines[0])
	}
	if lines[1] != "TABLE: № | Товар / 1 | Стул" {
		t.Errorf("line 1: got %q", lines[1])
	}
	if lines[2] != "" {
		t.Errorf("line 2: expected empty, got %q", lines[2])
	}
	if lines[3] != "TABLE: (пустая таблица)" {
		t.Errorf("line 3: got %q", lines[3])
	}
}

func TestEnumerateLines(t *testing.T) {
	lines := []string{"первая", "", "третья"}
	got := EnumerateLines(lines, 0)
	want := "0000: первая\n0002: третья"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestEnumerateLinesTruncates(t *testing.T) {
	lines := []string{"a", "b", "c"}
	got := EnumerateLines(lines, 2)
	if strings.Contains(got, "0002") {
		t.Errorf("expected truncation at 2 lines, got %q", got)
	}
	if !strings.Contains(got, "0001: b") {
		t.Errorf("expected second line present, got %q", got)
	}
}

func TestEnumerateLinesEmptyDocument(t *testing.T) {
	if got := EnumerateLines(nil, 0); got != "(пустой документ)" {
		t.Errorf("expected empty-document marker, got %q", got)
	}
}

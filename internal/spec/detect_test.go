package spec

import (
	"errors"
	"testing"

	"contractparser/internal/docblock"
)

func goodsTable() docblock.Block {
	return docblock.Block{
		Type: docblock.Table,
		Rows: [][]string{
			{"№", "Наименование", "Кол-во", "Цена"},
			{"1", "Стул офисный", "10", "1500"},
			{"2", "Стол рабочий", "5", "3200"},
		},
	}
}

func TestLocate_HeadingAndTable(t *testing.T) {
	blocks := []docblock.Block{
		{Type: docblock.Paragraph, Text: "ДОГОВОР ПОСТАВКИ"},
		{Type: docblock.Paragraph, Text: "Приложение №1 Спецификация"},
		goodsTable(),
		{Type: docblock.Paragraph, Text: "Подписи сторон"},
	}

	result, err := Locate(blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Heading != "Приложение №1 Спецификация" {
		t.Errorf("heading: got %q", result.Heading)
	}
	if result.StartIndex != 1 {
		t.Errorf("start index: expected 1, got %d", result.StartIndex)
	}
	if len(result.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(result.Tables))
	}
	if result.Tables[0].Index != 2 {
		t.Errorf("table index: expected 2, got %d", result.Tables[0].Index)
	}
}

func TestLocate_NotFound(t *testing.T) {
	blocks := []docblock.Block{
		{Type: docblock.Paragraph, Text: "Обычный договор без таблиц"},
		{Type: docblock.Paragraph, Text: "Условия оплаты"},
	}

	_, err := Locate(blocks)
	if err == nil {
		t.Fatal("expected not-found error")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLocate_PrefersSpecificationHeading(t *testing.T) {
	blocks := []docblock.Block{
		{Type: docblock.Paragraph, Text: "Приложение №2 к договору"},
		goodsTable(),
		{Type: docblock.Paragraph, Text: "СПЕЦИФИКАЦИЯ №1"},
		goodsTable(),
	}

	result, err := Locate(blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.StartIndex != 2 {
		t.Errorf("expected the specification heading at 2 to win, got start %d", result.StartIndex)
	}
	if result.Heading != "СПЕЦИФИКАЦИЯ №1" {
		t.Errorf("heading: got %q", result.Heading)
	}
}

func TestLocate_EndsAtTotalParagraph(t *testing.T) {
	blocks := []docblock.Block{
		{Type: docblock.Paragraph, Text: "Спецификация №1"},
		goodsTable(),
		{Type: docblock.Paragraph, Text: "Общая сумма: 47 500 руб."},
		{Type: docblock.Paragraph, Text: "Условия доставки обсуждаются отдельно"},
	}

	result, err := Locate(blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.EndIndex != 2 {
		t.Errorf("expected section to end at the totals paragraph (2), got %d", result.EndIndex)
	}
}

func TestLocate_LongSentenceIsNotHeading(t *testing.T) {
	blocks := []docblock.Block{
		{
			Type: docblock.Paragraph,
			Text: "Стороны согласовали что спецификация товаров приведена в приложении и является неотъемлемой частью договора",
		},
		goodsTable(),
	}

	// The only mention of the specification is body text; the scan must not
	// anchor a section on it.
	if result, err := Locate(blocks); err == nil {
		t.Fatalf("expected not-found, got result %+v", result)
	}
}

func TestExtract_ResponseShape(t *testing.T) {
	blocks := []docblock.Block{
		{Type: docblock.Paragraph, Text: "Спецификация №1"},
		goodsTable(),
	}

	resp, err := Extract(blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Tables) != 1 {
		t.Fatalf("expected 1 table, got %d", len(resp.Tables))
	}
	table := resp.Tables[0]
	if table.RowCount != 3 {
		t.Errorf("row_count: expected 3, got %d", table.RowCount)
	}
	if table.ColumnCount != 4 {
		t.Errorf("column_count: expected 4, got %d", table.ColumnCount)
	}
	if table.Preview != "№ | Наименование | Кол-во | Цена" {
		t.Errorf("preview: got %q", table.Preview)
	}
	if table.EndAnchor.Preview != "2 | Стол рабочий | 5 | 3200" {
		t.Errorf("end preview: got %q", table.EndAnchor.Preview)
	}
	if resp.StartAnchor.Index != 0 || resp.StartAnchor.Type != docblock.Paragraph {
		t.Errorf("start anchor: got %+v", resp.StartAnchor)
	}
	if resp.EndAnchor.Index != 1 || resp.EndAnchor.Type != docblock.Table {
		t.Errorf("end anchor: got %+v", resp.EndAnchor)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	blocks := []docblock.Block{
		{Type: docblock.Paragraph, Text: "Спецификация №1"},
		goodsTable(),
		{Type: docblock.Paragraph, Text: "Общая сумма 47500"},
	}

	first, err := Extract(blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Extract(blocks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Heading != second.Heading ||
		first.StartAnchor != second.StartAnchor ||
		first.EndAnchor != second.EndAnchor ||
		len(first.Tables) != len(second.Tables) {
		t.Errorf("extraction is not deterministic: %+v vs %+v", first, second)
	}
}

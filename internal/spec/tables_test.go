package spec

import (
	"testing"

	"contractparser/internal/docblock"
)

func TestIsSpecificationTable_HeaderKeywords(t *testing.T) {
	block := docblock.Block{
		Type: docblock.Table,
		Rows: [][]string{
			{"Наименование", "Ед.изм", "Количество", "Стоимость"},
			{"Кабель ВВГ 3х2.5", "м", "120", "8400"},
		},
	}
	if !IsSpecificationTable(block) {
		t.Error("expected goods table with header keywords to qualify")
	}
}

func TestIsSpecificationTable_NumberingHeader(t *testing.T) {
	block := docblock.Block{
		Type: docblock.Table,
		Rows: [][]string{
			{"№", "Позиция", "Объем"},
			{"1", "Щебень фракция 5-20", "40 шт"},
		},
	}
	if !IsSpecificationTable(block) {
		t.Error("expected table with № numbering to qualify")
	}
}

func TestIsSpecificationTable_Rejections(t *testing.T) {
	paragraph := docblock.Block{Type: docblock.Paragraph, Text: "Наименование Цена"}
	if IsSpecificationTable(paragraph) {
		t.Error("paragraph block must not qualify")
	}

	singleRow := docblock.Block{
		Type: docblock.Table,
		Rows: [][]string{{"Наименование", "Цена"}},
	}
	if IsSpecificationTable(singleRow) {
		t.Error("single-row table must not qualify")
	}

	narrow := docblock.Block{
		Type: docblock.Table,
		Rows: [][]string{
			{"Слева", "Справа"},
			{"текст", "текст"},
		},
	}
	if IsSpecificationTable(narrow) {
		t.Error("narrow keyword-less table must not qualify")
	}
}

func TestTableHasGoods_SkipsTotalsRows(t *testing.T) {
	rows := [][]string{
		{"Наименование", "Цена"},
		{"Итого", "47500"},
	}
	if TableHasGoods(rows) {
		t.Error("totals-only table must not count as goods")
	}
}

func TestTableHasGoods_UnitKeyword(t *testing.T) {
	rows := [][]string{
		{"Позиция", "Кол."},
		{"Стул", "10 шт"},
	}
	if !TableHasGoods(rows) {
		t.Error("expected unit keyword row to count as goods")
	}
}

func TestTableHasGoods_SkipsHeaderSpillover(t *testing.T) {
	rows := [][]string{
		{"Наименование товара", "Цена за единицу"},
		{"характеристика", "сумма"},
		{"Стул офисный 10 1500", ""},
	}
	if !TableHasGoods(rows) {
		t.Error("expected data row after header spillover to count")
	}
}

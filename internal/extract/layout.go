package extract

import (
	"strings"

	"github.com/ppiankov/customsdoc/internal/model"
	"github.com/ppiankov/customsdoc/internal/normalize"
)

type column int

const (
	colPart column = iota
	colDescription
	colQuantity
	colWeight
	colValue
	colHTS
	colOrigin
)

// columnWords maps lower-cased table header tokens to the column they name
var columnWords = map[string]column{
	"part":        colPart,
	"part#":       colPart,
	"partno":      colPart,
	"sku":         colPart,
	"item":        colPart,
	"description": colDescription,
	"desc":        colDescription,
	"goods":       colDescription,
	"qty":         colQuantity,
	"quantity":    colQuantity,
	"pcs":         colQuantity,
	"weight":      colWeight,
	"kg":          colWeight,
	"(kg)":        colWeight,
	"net":         colWeight,
	"value":       colValue,
	"amount":      colValue,
	"usd":         colValue,
	"(usd)":       colValue,
	"hts":         colHTS,
	"hs":          colHTS,
	"tariff":      colHTS,
	"coo":         colOrigin,
	"origin":      colOrigin,
	"country":     colOrigin,
}

const minHeaderColumns = 3

// tableColumn is one detected column: its field and the span of its header words
type tableColumn struct {
	field column
	span  *BBox
}

// ParseLayoutDocument parses hOCR markup and interprets it as a commercial invoice
func ParseLayoutDocument(markup string) (model.CanonicalDocument, error) {
	layout, err := ParseHOCR(markup)
	if err != nil {
		return model.CanonicalDocument{}, err
	}
	return InterpretLayout(layout)
}

// InterpretLayout pulls labelled header fields and the line-item table out of
// an OCR layout. The first line naming at least three known columns is the
// table header; rows run until a total/subtotal line.
func InterpretLayout(layout *Layout) (model.CanonicalDocument, error) {
	var header model.CanonicalHeader
	seen := make(map[model.HeaderField]bool)

	var (
		columns    []tableColumn
		tableLine  string
		inTable    bool
		lines      []model.CanonicalLine
		unassigned = []string{}
	)

	for _, line := range layout.Structured {
		if inTable {
			if isTotalLine(line) {
				inTable = false
				continue
			}
			row, ok := assignRow(columns, line)
			if !ok {
				unassigned = append(unassigned, line.Text)
				continue
			}
			if onlyDescription(row) && len(lines) > 0 {
				prev := &lines[len(lines)-1]
				prev.Description = strings.TrimSpace(prev.Description + " " + row.Description)
				continue
			}
			if filledFields(row) < 2 {
				unassigned = append(unassigned, line.Text)
				continue
			}
			lines = append(lines, row)
			continue
		}

		if columns == nil {
			if cols := detectColumns(line); len(cols) >= minHeaderColumns {
				columns = cols
				tableLine = line.Text
				inTable = true
				continue
			}
		}

		readHeaderLabel(&header, seen, line.Text)
	}

	if header.Currency == "" && (strings.Contains(layout.Text, "USD") || strings.Contains(layout.Text, "$")) {
		header.Currency = "USD"
	}

	if len(lines) == 0 {
		return model.CanonicalDocument{}, ErrNoLineItems
	}

	return normalize.Document(normalize.Input{
		Header:     header,
		Lines:      lines,
		SourceType: model.SourcePDF,
		Raw: map[string]any{
			"layoutLines":     layoutTexts(layout),
			"tableHeader":     tableLine,
			"unassignedLines": unassigned,
		},
	}), nil
}

func layoutTexts(layout *Layout) []string {
	texts := make([]string, len(layout.Structured))
	for i, l := range layout.Structured {
		texts[i] = l.Text
	}
	return texts
}

// readHeaderLabel applies a "Label: value" line; the first occurrence of a field wins
func readHeaderLabel(header *model.CanonicalHeader, seen map[model.HeaderField]bool, text string) {
	key, value, ok := splitKeyValue(text)
	if !ok || value == "" {
		return
	}
	field, known := layoutHeaderLabels[strings.TrimRight(key, ". ")]
	if !known || seen[field] {
		return
	}
	seen[field] = true
	header.Set(field, value)
}

// detectColumns returns the columns named by a line, in left-to-right order
func detectColumns(line Line) []tableColumn {
	var cols []tableColumn
	index := make(map[column]int)

	for i, word := range line.Words {
		field, ok := columnWords[strings.ToLower(strings.TrimRight(word, ":."))]
		if !ok {
			continue
		}
		var box *BBox
		if i < len(line.WordBoxes) {
			box = line.WordBoxes[i]
		}
		if at, dup := index[field]; dup {
			cols[at].span = unionBox(cols[at].span, box)
			continue
		}
		index[field] = len(cols)
		cols = append(cols, tableColumn{field: field, span: copyBox(box)})
	}
	return cols
}

// assignRow distributes a line's words over the table columns
func assignRow(columns []tableColumn, line Line) (model.CanonicalLine, bool) {
	var row model.CanonicalLine
	cells := make(map[column][]string)

	if spansComplete(columns) && len(line.WordBoxes) == len(line.Words) && boxesComplete(line.WordBoxes) {
		for i, word := range line.Words {
			field := nearestColumn(columns, line.WordBoxes[i])
			cells[field] = append(cells[field], word)
		}
	} else if len(line.Words) == len(columns) {
		for i, word := range line.Words {
			cells[columns[i].field] = append(cells[columns[i].field], word)
		}
	} else {
		return row, false
	}

	join := func(c column) string { return strings.Join(cells[c], " ") }
	row.PartNumber = join(colPart)
	row.Description = join(colDescription)
	row.Quantity = join(colQuantity)
	row.NetWeightKg = join(colWeight)
	row.ValueUsd = join(colValue)
	row.HTSCode = join(colHTS)
	row.CountryOfOrigin = join(colOrigin)
	return row, true
}

// nearestColumn picks the column whose header span is horizontally closest to
// the word's centre; ties go to the leftmost column
func nearestColumn(columns []tableColumn, word *BBox) column {
	center := (word.X0 + word.X1) / 2
	best, bestDist := columns[0].field, -1
	for _, col := range columns {
		dist := 0
		switch {
		case center < col.span.X0:
			dist = col.span.X0 - center
		case center > col.span.X1:
			dist = center - col.span.X1
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = col.field, dist
		}
	}
	return best
}

func isTotalLine(line Line) bool {
	if len(line.Words) == 0 {
		return false
	}
	first := strings.ToLower(line.Words[0])
	return strings.HasPrefix(first, "total") || strings.HasPrefix(first, "subtotal")
}

func onlyDescription(row model.CanonicalLine) bool {
	return row.Description != "" && filledFields(row) == 1
}

func filledFields(row model.CanonicalLine) int {
	n := 0
	for _, v := range []string{row.PartNumber, row.Description, row.Quantity, row.NetWeightKg, row.ValueUsd, row.HTSCode, row.CountryOfOrigin} {
		if v != "" {
			n++
		}
	}
	return n
}

func spansComplete(columns []tableColumn) bool {
	for _, c := range columns {
		if c.span == nil {
			return false
		}
	}
	return true
}

func boxesComplete(boxes []*BBox) bool {
	for _, b := range boxes {
		if b == nil {
			return false
		}
	}
	return true
}

func copyBox(b *BBox) *BBox {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

func unionBox(a, b *BBox) *BBox {
	if a == nil || b == nil {
		return nil
	}
	return &BBox{
		X0: min(a.X0, b.X0),
		Y0: min(a.Y0, b.Y0),
		X1: max(a.X1, b.X1),
		Y1: max(a.Y1, b.Y1),
	}
}

package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ppiankov/customsdoc/internal/model"
	"github.com/ppiankov/customsdoc/internal/normalize"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sectionBreak is the first run of blank (or whitespace-only) lines, a blank
// first line included
var sectionBreak = regexp.MustCompile(`(?:^|\n)(?:[^\S\n]*\n)+`)

// columnAliases lists, per canonical field, the column names tried in order
var columnAliases = struct {
	partNumber, description, quantity, netWeightKg, valueUsd, htsCode, countryOfOrigin []string
}{
	partNumber:      []string{"partNumber", "PartNumber"},
	description:     []string{"description", "Description"},
	quantity:        []string{"quantity", "Quantity"},
	netWeightKg:     []string{"netWeightKg", "NetWeightKg", "weight"},
	valueUsd:        []string{"valueUsd", "ValueUsd", "value"},
	htsCode:         []string{"htsCode", "HTS"},
	countryOfOrigin: []string{"countryOfOrigin", "COO"},
}

// DelimitedParser parses a '#'-commented header block followed by a delimited table
type DelimitedParser struct {
	comma rune
}

// DelimitedOption configures a DelimitedParser
type DelimitedOption func(*DelimitedParser)

// WithDelimiter sets the field delimiter (default ',')
func WithDelimiter(r rune) DelimitedOption {
	return func(p *DelimitedParser) {
		if r != 0 {
			p.comma = r
		}
	}
}

// NewDelimitedParser creates a new delimited parser
func NewDelimitedParser(opts ...DelimitedOption) *DelimitedParser {
	p := &DelimitedParser{comma: ','}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseDelimited parses a comma-delimited manifest with default settings
func ParseDelimited(data []byte) (model.CanonicalDocument, error) {
	return NewDelimitedParser().Parse(data)
}

// Parse splits the payload on its first blank line, reads header metadata from
// the first section and line items from the second.
func (p *DelimitedParser) Parse(data []byte) (model.CanonicalDocument, error) {
	if len(data) == 0 {
		return model.CanonicalDocument{}, ErrEmptyInput
	}

	text, err := decodeUTF8(data)
	if err != nil {
		return model.CanonicalDocument{}, fmt.Errorf("decode: %w", err)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	loc := sectionBreak.FindStringIndex(text)
	if loc == nil {
		return model.CanonicalDocument{}, ErrMissingSeparator
	}
	headerSection, rowsSection := text[:loc[0]], text[loc[1]:]

	header, headerLines := parseHeaderBlock(headerSection)

	columns, lines, err := p.parseRows(rowsSection)
	if err != nil {
		return model.CanonicalDocument{}, err
	}
	if len(lines) == 0 {
		return model.CanonicalDocument{}, ErrNoLineItems
	}

	return normalize.Document(normalize.Input{
		Header:     header,
		Lines:      lines,
		SourceType: model.SourceCSV,
		Raw: map[string]any{
			"headerLines": headerLines,
			"columnKeys":  columns,
		},
	}), nil
}

// parseHeaderBlock reads "# key: value" lines. Unknown keys are dropped.
func parseHeaderBlock(section string) (model.CanonicalHeader, []string) {
	var header model.CanonicalHeader
	headerLines := []string{}

	for _, line := range strings.Split(section, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") {
			continue
		}
		headerLines = append(headerLines, line)

		key, value, ok := splitKeyValue(strings.TrimLeft(line, "#"))
		if !ok {
			continue
		}
		if field, known := headerFields[key]; known {
			header.Set(field, value)
		}
	}

	return header, headerLines
}

// parseRows reads the table section; the first record names the columns
func (p *DelimitedParser) parseRows(section string) ([]string, []model.CanonicalLine, error) {
	r := csv.NewReader(strings.NewReader(section))
	r.Comma = p.comma
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	headerRow, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read column header: %w", err)
	}

	columns := make([]string, 0, len(headerRow))
	index := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		name = strings.TrimSpace(name)
		if _, dup := index[name]; dup {
			continue
		}
		index[name] = i
		columns = append(columns, name)
	}

	var lines []model.CanonicalLine
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read line items: %w", err)
		}
		if isBlankRecord(record) {
			continue
		}

		get := func(aliases []string) string {
			for _, alias := range aliases {
				if v := valueAt(index, record, alias); v != "" {
					return v
				}
			}
			return ""
		}

		lines = append(lines, model.CanonicalLine{
			PartNumber:      get(columnAliases.partNumber),
			Description:     get(columnAliases.description),
			Quantity:        get(columnAliases.quantity),
			NetWeightKg:     get(columnAliases.netWeightKg),
			ValueUsd:        get(columnAliases.valueUsd),
			HTSCode:         get(columnAliases.htsCode),
			CountryOfOrigin: get(columnAliases.countryOfOrigin),
		})
	}

	return columns, lines, nil
}

func valueAt(index map[string]int, row []string, key string) string {
	idx, ok := index[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// decodeUTF8 decodes the buffer as UTF-8, honoring and stripping a leading BOM
func decodeUTF8(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Package normalize turns parser output into a CanonicalDocument.
//
// The normalizer is source-agnostic: the delimited and layout parsers both hand it
// the same (header, lines, raw) shape and everything format-specific stays in the
// parsers.
package normalize

import (
	"fmt"
	"strings"

	"github.com/ppiankov/customsdoc/internal/model"
)

// Input is what a parser produces before normalization
type Input struct {
	Header     model.CanonicalHeader
	Lines      []model.CanonicalLine
	SourceType model.SourceType
	Raw        map[string]any
}

// Document builds the canonical document, computing checksums over the lines.
// Values that cannot be coerced contribute 0 and are recorded in
// meta.normalization under "lines[i].<field>"; the line strings are kept as-is.
func Document(in Input) model.CanonicalDocument {
	notes := make(map[string]string)

	lines := make([]model.CanonicalLine, len(in.Lines))
	copy(lines, in.Lines)

	var sums model.CanonicalChecksums
	for i, line := range lines {
		sums.Quantity += coerce(notes, i, "quantity", line.Quantity, ParseNumber)
		sums.NetWeightKg += coerce(notes, i, "netWeightKg", line.NetWeightKg, ParseWeightKg)
		sums.ValueUsd += coerce(notes, i, "valueUsd", line.ValueUsd, ParseNumber)
	}

	if c := strings.TrimSpace(in.Header.Currency); c != "" && len(c) != 3 {
		notes["header.currency"] = fmt.Sprintf("currency %q is not a 3-letter ISO code", c)
	}

	raw := in.Raw
	if raw == nil {
		raw = map[string]any{}
	}

	return model.CanonicalDocument{
		Header:    in.Header,
		Lines:     lines,
		Checksums: sums,
		Meta: model.CanonicalMeta{
			SourceType:    in.SourceType,
			Raw:           raw,
			Normalization: notes,
		},
	}
}

// coerce parses one field and records anything other than a clean parse
func coerce(notes map[string]string, idx int, field, raw string, parse func(string) (Result, bool)) float64 {
	key := fmt.Sprintf("lines[%d].%s", idx, field)
	res, ok := parse(raw)
	if !ok {
		if strings.TrimSpace(raw) == "" {
			notes[key] = "missing value counted as 0"
		} else {
			notes[key] = fmt.Sprintf("unparseable value %q counted as 0", raw)
		}
		return 0
	}
	if res.Note != "" {
		notes[key] = res.Note
	}
	return res.Value
}

package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const kgPerLb = 0.45359237

var (
	// optional currency prefix, one numeric token, optional trailing unit word
	numericToken = regexp.MustCompile(`^(?:[$€£¥]\s*|(?:USD|EUR|GBP|CAD|MXN|CNY|JPY|AUD|CHF|HKD|INR)\s+)?` +
		`([-+]?[0-9.,]*[0-9][0-9.,]*(?:[eE][-+]?[0-9]+)?)(?:\s*[A-Za-z]+\.?)?$`)
	poundSuffix = regexp.MustCompile(`(?i)\blbs?\b|\d\s*lbs?$`)
)

// Result is a coerced number plus a note describing any conversion applied
type Result struct {
	Value float64
	Note  string
}

// ParseNumber coerces loosely formatted numbers such as "$1,234.50", "12 pcs",
// "1e3" or "1,5". Thousands separators are dropped and a remaining comma is read
// as a decimal point. Anything besides a leading currency marker and a trailing
// unit word makes the value unparseable.
func ParseNumber(raw string) (Result, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Result{}, false
	}

	m := numericToken.FindStringSubmatch(s)
	if m == nil {
		return Result{}, false
	}
	token := m[1]
	clean := dropThousands(token)
	if strings.Count(clean, ",") > 1 {
		return Result{}, false
	}
	clean = strings.Replace(clean, ",", ".", 1)

	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return Result{}, false
	}

	res := Result{Value: v}
	if token != s || clean != token {
		res.Note = fmt.Sprintf("coerced %q to %s", raw, strconv.FormatFloat(v, 'f', -1, 64))
	}
	return res, true
}

// ParseWeightKg is ParseNumber plus pound-to-kilogram conversion
func ParseWeightKg(raw string) (Result, bool) {
	res, ok := ParseNumber(raw)
	if !ok {
		return res, false
	}
	if poundSuffix.MatchString(strings.TrimSpace(raw)) {
		kg := res.Value * kgPerLb
		return Result{
			Value: kg,
			Note:  fmt.Sprintf("converted %q from lb to %s kg", raw, strconv.FormatFloat(kg, 'f', 3, 64)),
		}, true
	}
	return res, true
}

// dropThousands removes commas followed by exactly three digits and then a
// non-digit or the end of input
func dropThousands(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == ',' && isThousandsGroup(s[i+1:]) {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isThousandsGroup(rest string) bool {
	if len(rest) < 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if rest[i] < '0' || rest[i] > '9' {
			return false
		}
	}
	return len(rest) == 3 || rest[3] < '0' || rest[3] > '9'
}

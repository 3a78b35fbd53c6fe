package validate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/customsdoc/internal/model"
)

func validShipment() *model.Shipment {
	return &model.Shipment{
		ID:                 "shp-1",
		Shipper:            model.PartyRef{Name: "Acme Exports"},
		Consignee:          model.PartyRef{Name: "Globex GmbH"},
		Incoterm:           "FOB",
		DestinationCountry: "DE",
		TotalCustomsValue:  model.Float(200),
		TotalWeightKg:      model.Float(3),
		AESITN:             "X20240101123456",
	}
}

func validLines() []model.LineItem {
	return []model.LineItem{
		{
			Description:   "Laptop",
			Quantity:      model.Float(1),
			UnitValue:     model.Float(100),
			ExtendedValue: model.Float(100),
			NetWeightKg:   model.Float(1.5),
			HTSCode:       "8471.50",
		},
		{
			Description:   "Monitor",
			Quantity:      model.Float(1),
			UnitValue:     model.Float(100),
			ExtendedValue: model.Float(100),
			NetWeightKg:   model.Float(1.5),
			HTSCode:       "8528.52.00",
		},
	}
}

func evaluate(t *testing.T, r Rule, s *model.Shipment, lines []model.LineItem) []model.ValidationIssue {
	t.Helper()
	issues, err := r.Evaluate(context.Background(), s, lines)
	require.NoError(t, err)
	return issues
}

func codes(issues []model.ValidationIssue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Code)
	}
	return out
}

func TestRules_ValidShipmentHasNoIssues(t *testing.T) {
	for _, r := range DefaultRules(Options{}) {
		t.Run(r.Name(), func(t *testing.T) {
			assert.Empty(t, evaluate(t, r, validShipment(), validLines()))
		})
	}
}

func TestDefaultRules_Order(t *testing.T) {
	lookup := lookupFunc(func(context.Context, string) (bool, error) { return true, nil })

	var names []string
	for _, r := range DefaultRules(Options{Lookup: lookup}) {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{
		"parties", "line_items", "numeric_consistency", "hts_format",
		"hts_reference", "incoterm", "eei", "dangerous_goods",
	}, names)
}

func TestFilter(t *testing.T) {
	rules := Filter(DefaultRules(Options{}), []string{"eei", "parties", "nonexistent"})

	var names []string
	for _, r := range rules {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"line_items", "numeric_consistency", "hts_format", "incoterm", "dangerous_goods"}, names)
}

func TestPartiesRule(t *testing.T) {
	r := NewPartiesRule()

	s := validShipment()
	s.Shipper = model.PartyRef{}
	s.Consignee = model.PartyRef{Snapshot: `{"name":"Snapshot Consignee"}`}
	issues := evaluate(t, r, s, nil)
	require.Len(t, issues, 1)
	assert.Equal(t, "MISSING_SHIPPER", issues[0].Code)
	assert.Equal(t, model.SeverityError, issues[0].Severity)
	assert.Equal(t, "header.shipper", issues[0].Path)

	s.Shipper = model.PartyRef{Snapshot: "{not json"}
	s.Consignee = model.PartyRef{Name: "   "}
	assert.Equal(t, []string{"MISSING_SHIPPER", "MISSING_CONSIGNEE"}, codes(evaluate(t, r, s, nil)))
}

func TestLineItemsRule_EmptyList(t *testing.T) {
	issues := evaluate(t, NewLineItemsRule(), validShipment(), nil)

	require.Len(t, issues, 1)
	assert.Equal(t, "NO_LINE_ITEMS", issues[0].Code)
	assert.Equal(t, model.SeverityError, issues[0].Severity)
	assert.Equal(t, "lines", issues[0].Path)
}

func TestLineItemsRule_PerLineChecks(t *testing.T) {
	lines := []model.LineItem{
		{Description: "ok", Quantity: model.Float(1), UnitValue: model.Float(0)},
		{Description: "", Quantity: model.Float(0), UnitValue: nil},
		{Description: "neg", Quantity: nil, UnitValue: model.Float(-1)},
	}

	issues := evaluate(t, NewLineItemsRule(), validShipment(), lines)

	assert.Equal(t, []string{"MISSING_DESCRIPTION", "INVALID_QUANTITY", "INVALID_VALUE", "INVALID_QUANTITY", "INVALID_VALUE"}, codes(issues))
	assert.Equal(t, "lines[1].description", issues[0].Path)
	assert.Equal(t, "lines[1].quantity", issues[1].Path)
	assert.Equal(t, "lines[1].unitValue", issues[2].Path)
	assert.Equal(t, "lines[2].unitValue", issues[4].Path)
}

func TestNumericRule_Tolerance(t *testing.T) {
	tests := []struct {
		name        string
		headerTotal float64
		want        []string
	}{
		{"exact", 100.00, nil},
		{"within 0.99", 100.99, nil},
		{"over by 1.01", 101.01, []string{"VALUE_MISMATCH"}},
		{"under by 1.01", 98.99, []string{"VALUE_MISMATCH"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validShipment()
			s.TotalCustomsValue = model.Float(tt.headerTotal)
			s.TotalWeightKg = model.Float(2)
			lines := []model.LineItem{{ExtendedValue: model.Float(100), NetWeightKg: model.Float(2)}}

			issues := evaluate(t, NewNumericRule(), s, lines)
			if tt.want == nil {
				assert.Empty(t, issues)
				return
			}
			assert.Equal(t, tt.want, codes(issues))
			assert.Equal(t, model.SeverityWarning, issues[0].Severity)
			assert.Equal(t, "header.totalCustomsValue", issues[0].Path)
		})
	}
}

func TestNumericRule_WeightAndNilTotals(t *testing.T) {
	s := validShipment()
	s.TotalCustomsValue = nil
	s.TotalWeightKg = nil
	lines := []model.LineItem{{ExtendedValue: nil, NetWeightKg: model.Float(0.5)}}

	issues := evaluate(t, NewNumericRule(), s, lines)
	require.Len(t, issues, 1)
	assert.Equal(t, "WEIGHT_MISMATCH", issues[0].Code)
	assert.Equal(t, "header.totalWeightKg", issues[0].Path)

	lines[0].NetWeightKg = model.Float(0.05)
	assert.Empty(t, evaluate(t, NewNumericRule(), s, lines))
}

func TestHTSFormatRule(t *testing.T) {
	tests := []struct {
		code string
		want []string
	}{
		{"1234.56.78", nil},
		{"847150", nil},
		{"12", []string{"INVALID_HTS"}},
		{"12.34.5", []string{"INVALID_HTS"}},
		{"", []string{"MISSING_HTS"}},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			issues := evaluate(t, NewHTSFormatRule(), validShipment(), []model.LineItem{{HTSCode: tt.code}})
			if tt.want == nil {
				assert.Empty(t, issues)
				return
			}
			assert.Equal(t, tt.want, codes(issues))
			assert.Equal(t, "lines[0].htsCode", issues[0].Path)
		})
	}

	assert.Equal(t, "12345678", DigitsOnly("1234.56.78"))
}

func TestHTSFormatRule_Severities(t *testing.T) {
	issues := evaluate(t, NewHTSFormatRule(), validShipment(), []model.LineItem{{HTSCode: ""}, {HTSCode: "12"}})

	require.Len(t, issues, 2)
	assert.Equal(t, model.SeverityError, issues[0].Severity)
	assert.Equal(t, model.SeverityWarning, issues[1].Severity)
	assert.Equal(t, "lines[1].htsCode", issues[1].Path)
}

type lookupFunc func(ctx context.Context, code string) (bool, error)

func (f lookupFunc) Contains(ctx context.Context, code string) (bool, error) {
	return f(ctx, code)
}

func TestHTSReferenceRule(t *testing.T) {
	calls := 0
	lookup := lookupFunc(func(_ context.Context, code string) (bool, error) {
		calls++
		switch code {
		case "8471.50":
			return true, nil
		case "9999.99":
			return false, nil
		default:
			return false, errors.New("registry unavailable")
		}
	})

	lines := []model.LineItem{
		{HTSCode: "8471.50"},
		{HTSCode: "9999.99"},
		{HTSCode: ""},
		{HTSCode: "0101.21"},
		{HTSCode: "9999.99"},
	}

	issues := evaluate(t, NewHTSReferenceRule(lookup, time.Second), validShipment(), lines)

	assert.Equal(t, []string{"HTS_UNKNOWN", "HTS_UNKNOWN", "HTS_UNKNOWN"}, codes(issues))
	assert.Equal(t, "lines[1].htsCode", issues[0].Path)
	assert.Equal(t, "lines[3].htsCode", issues[1].Path)
	assert.Contains(t, issues[1].Message, "could not be verified")
	assert.Equal(t, "lines[4].htsCode", issues[2].Path)
	for _, i := range issues {
		assert.Equal(t, model.SeverityWarning, i.Severity)
	}
	assert.Equal(t, 3, calls, "repeated codes are looked up once")
}

func TestHTSReferenceRule_TimeoutDegradesToWarning(t *testing.T) {
	lookup := lookupFunc(func(ctx context.Context, _ string) (bool, error) {
		<-ctx.Done()
		return false, ctx.Err()
	})

	issues := evaluate(t, NewHTSReferenceRule(lookup, 10*time.Millisecond), validShipment(),
		[]model.LineItem{{HTSCode: "8471.50"}})

	require.Len(t, issues, 1)
	assert.Equal(t, "HTS_UNKNOWN", issues[0].Code)
	assert.Contains(t, issues[0].Message, "deadline exceeded")
}

func TestIncotermRule(t *testing.T) {
	tests := []struct {
		incoterm string
		want     string
		severity model.Severity
	}{
		{"", "VAL-001", model.SeverityError},
		{"  ", "VAL-001", model.SeverityError},
		{"XYZ", "VAL-002", model.SeverityWarning},
		{"DAT", "VAL-002", model.SeverityWarning},
		{"DDP", "", ""},
		{"fob", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.incoterm, func(t *testing.T) {
			s := validShipment()
			s.Incoterm = tt.incoterm
			issues := evaluate(t, NewIncotermRule(), s, nil)
			if tt.want == "" {
				assert.Empty(t, issues)
				return
			}
			require.Len(t, issues, 1)
			assert.Equal(t, tt.want, issues[0].Code)
			assert.Equal(t, tt.severity, issues[0].Severity)
			assert.Equal(t, "incoterm", issues[0].Path)
		})
	}
}

func highValueLines(n int) []model.LineItem {
	lines := make([]model.LineItem, n)
	for i := range lines {
		lines[i] = model.LineItem{Description: "Server", ExtendedValue: model.Float(3000)}
	}
	return lines
}

func TestEEIRule_ExemptDestinations(t *testing.T) {
	for _, dest := range []string{"US", "CA", "us", " ca "} {
		t.Run(dest, func(t *testing.T) {
			s := validShipment()
			s.DestinationCountry = dest
			s.AESITN = ""
			assert.Empty(t, evaluate(t, NewEEIRule(0), s, highValueLines(3)))
		})
	}
}

func TestEEIRule_SingleIssueForManyLines(t *testing.T) {
	s := validShipment()
	s.AESITN = ""

	issues := evaluate(t, NewEEIRule(0), s, highValueLines(3))

	require.Len(t, issues, 1)
	assert.Equal(t, "EEI_REQUIRED", issues[0].Code)
	assert.Equal(t, model.SeverityWarning, issues[0].Severity)
	assert.Equal(t, "header.aesItn", issues[0].Path)
}

func TestEEIRule_FilingOrExemptionSatisfies(t *testing.T) {
	s := validShipment()
	assert.Empty(t, evaluate(t, NewEEIRule(0), s, highValueLines(1)))

	s.AESITN = ""
	s.EEIExemptionCode = "NOEEI 30.37(a)"
	assert.Empty(t, evaluate(t, NewEEIRule(0), s, highValueLines(1)))
}

func TestEEIRule_BlankFilingValuesDoNotSatisfy(t *testing.T) {
	s := validShipment()
	s.AESITN = "   "
	s.EEIExemptionCode = "\t"

	issues := evaluate(t, NewEEIRule(0), s, highValueLines(1))
	require.Len(t, issues, 1)
	assert.Equal(t, "EEI_REQUIRED", issues[0].Code)
}

func TestEEIRule_Threshold(t *testing.T) {
	s := validShipment()
	s.AESITN = ""
	lines := []model.LineItem{{ExtendedValue: model.Float(2500)}}

	assert.Empty(t, evaluate(t, NewEEIRule(0), s, lines), "threshold itself does not trigger")
	assert.Len(t, evaluate(t, NewEEIRule(1000), s, lines), 1)
}

func TestDangerousGoodsRule(t *testing.T) {
	lines := []model.LineItem{
		{Description: "Books"},
		{Description: "Batteries", IsDangerousGoods: true, DGUnNumber: "UN3480"},
		{Description: "Paint", IsDangerousGoods: true, DGUnNumber: "UN1263", DGHazardClass: "3"},
		{Description: "Aerosol", IsDangerousGoods: true},
	}

	s := validShipment()
	issues := evaluate(t, NewDangerousGoodsRule(), s, lines)

	assert.Equal(t, []string{"DG_MISMATCH", "DG_INCOMPLETE", "DG_INCOMPLETE"}, codes(issues))
	assert.Equal(t, "header.hasDangerousGoods", issues[0].Path)
	assert.Equal(t, "lines[1].dgUnNumber", issues[1].Path)
	assert.Equal(t, "lines[3].dgUnNumber", issues[2].Path)
	assert.Equal(t, model.SeverityError, issues[1].Severity)

	s.HasDangerousGoods = true
	assert.Empty(t, evaluate(t, NewDangerousGoodsRule(), s, lines[:1]), "DG header over plain lines")
	assert.Equal(t, []string{"DG_INCOMPLETE", "DG_INCOMPLETE"}, codes(evaluate(t, NewDangerousGoodsRule(), s, lines)))
}

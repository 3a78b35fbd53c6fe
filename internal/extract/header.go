package extract

import (
	"strings"

	"github.com/ppiankov/customsdoc/internal/model"
)

// headerFields are the keys the delimited header block recognizes
var headerFields = map[string]model.HeaderField{
	"shipper":   model.FieldShipper,
	"consignee": model.FieldConsignee,
	"incoterm":  model.FieldIncoterm,
	"currency":  model.FieldCurrency,
	"reference": model.FieldReference,
}

// layoutHeaderLabels extends headerFields with the labels commonly printed on
// commercial invoices
var layoutHeaderLabels = map[string]model.HeaderField{
	"shipper":        model.FieldShipper,
	"exporter":       model.FieldShipper,
	"seller":         model.FieldShipper,
	"consignee":      model.FieldConsignee,
	"sold to":        model.FieldConsignee,
	"consigned to":   model.FieldConsignee,
	"ship to":        model.FieldConsignee,
	"incoterm":       model.FieldIncoterm,
	"incoterms":      model.FieldIncoterm,
	"terms":          model.FieldIncoterm,
	"currency":       model.FieldCurrency,
	"reference":      model.FieldReference,
	"invoice number": model.FieldReference,
	"invoice no":     model.FieldReference,
}

// splitKeyValue splits on the first ':' and lower-cases the key
func splitKeyValue(line string) (key, value string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	key = strings.ToLower(strings.TrimSpace(line[:idx]))
	if key == "" {
		return "", "", false
	}
	return key, strings.TrimSpace(line[idx+1:]), true
}

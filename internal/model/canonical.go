package model

// CanonicalDocument is the normalized form of one ingested source document
type CanonicalDocument struct {
	Header    CanonicalHeader    `json:"header"`
	Lines     []CanonicalLine    `json:"lines"`
	Checksums CanonicalChecksums `json:"checksums"`
	Meta      CanonicalMeta      `json:"meta"`
}

// CanonicalHeader holds the recognized document-level fields
type CanonicalHeader struct {
	Shipper   string  `json:"shipper"`
	Consignee string  `json:"consignee"`
	Incoterm  string  `json:"incoterm"`
	Currency  string  `json:"currency"`
	Reference *string `json:"reference,omitempty"`
}

// CanonicalLine is one line item exactly as extracted (no numeric coercion)
type CanonicalLine struct {
	PartNumber      string `json:"partNumber"`
	Description     string `json:"description"`
	Quantity        string `json:"quantity"`
	NetWeightKg     string `json:"netWeightKg"`
	ValueUsd        string `json:"valueUsd"`
	HTSCode         string `json:"htsCode"`
	CountryOfOrigin string `json:"countryOfOrigin"`
}

// CanonicalChecksums are sums over all lines after best-effort coercion
type CanonicalChecksums struct {
	Quantity    float64 `json:"quantity"`
	NetWeightKg float64 `json:"netWeightKg"`
	ValueUsd    float64 `json:"valueUsd"`
}

// CanonicalMeta carries provenance and the audit trail of coercions
type CanonicalMeta struct {
	SourceType    SourceType        `json:"sourceType"`
	Raw           map[string]any    `json:"raw"`
	Normalization map[string]string `json:"normalization"`
}

// SourceType tags where a document came from
type SourceType string

const (
	SourceCSV SourceType = "csv"
	SourcePDF SourceType = "pdf" // OCR layout origin
)

// HeaderField names a recognized header key
type HeaderField string

const (
	FieldShipper   HeaderField = "shipper"
	FieldConsignee HeaderField = "consignee"
	FieldIncoterm  HeaderField = "incoterm"
	FieldCurrency  HeaderField = "currency"
	FieldReference HeaderField = "reference"
)

// Set assigns a recognized field. Unknown fields are ignored and reported as false.
func (h *CanonicalHeader) Set(field HeaderField, value string) bool {
	switch field {
	case FieldShipper:
		h.Shipper = value
	case FieldConsignee:
		h.Consignee = value
	case FieldIncoterm:
		h.Incoterm = value
	case FieldCurrency:
		h.Currency = value
	case FieldReference:
		v := value
		h.Reference = &v
	default:
		return false
	}
	return true
}

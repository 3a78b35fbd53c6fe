package model

import (
	"encoding/json"
	"strings"
)

// Shipment is the persisted shipment header handed to the validation pipeline.
// It is a different shape from CanonicalDocument; mapping between them happens
// outside this module.
type Shipment struct {
	ID                 string   `json:"id,omitempty" yaml:"id" toml:"id"`
	Shipper            PartyRef `json:"shipper" yaml:"shipper" toml:"shipper"`
	Consignee          PartyRef `json:"consignee" yaml:"consignee" toml:"consignee"`
	Incoterm           string   `json:"incoterm" yaml:"incoterm" toml:"incoterm"`
	Currency           string   `json:"currency,omitempty" yaml:"currency" toml:"currency"`
	OriginCountry      string   `json:"originCountry,omitempty" yaml:"originCountry" toml:"originCountry"`
	DestinationCountry string   `json:"destinationCountry" yaml:"destinationCountry" toml:"destinationCountry"`
	TotalCustomsValue  *float64 `json:"totalCustomsValue,omitempty" yaml:"totalCustomsValue" toml:"totalCustomsValue"`
	TotalWeightKg      *float64 `json:"totalWeightKg,omitempty" yaml:"totalWeightKg" toml:"totalWeightKg"`
	HasDangerousGoods  bool     `json:"hasDangerousGoods" yaml:"hasDangerousGoods" toml:"hasDangerousGoods"`
	AESITN             string   `json:"aesItn,omitempty" yaml:"aesItn" toml:"aesItn"`
	EEIExemptionCode   string   `json:"eeiExemptionCode,omitempty" yaml:"eeiExemptionCode" toml:"eeiExemptionCode"`
}

// PartyRef is either a direct name or a legacy JSON snapshot of the party record
type PartyRef struct {
	Name     string `json:"name,omitempty" yaml:"name" toml:"name"`
	Snapshot string `json:"snapshot,omitempty" yaml:"snapshot" toml:"snapshot"`
}

// ResolvedName returns the direct name when set, otherwise the "name" member of
// the snapshot JSON. A malformed snapshot resolves to "".
func (p PartyRef) ResolvedName() string {
	if name := strings.TrimSpace(p.Name); name != "" {
		return name
	}
	if strings.TrimSpace(p.Snapshot) == "" {
		return ""
	}
	var snap struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(p.Snapshot), &snap); err != nil {
		return ""
	}
	return strings.TrimSpace(snap.Name)
}

// LineItem is a persisted shipment line. Nil pointers mean the value was never set.
type LineItem struct {
	Description      string   `json:"description" yaml:"description" toml:"description"`
	Quantity         *float64 `json:"quantity,omitempty" yaml:"quantity" toml:"quantity"`
	UnitValue        *float64 `json:"unitValue,omitempty" yaml:"unitValue" toml:"unitValue"`
	ExtendedValue    *float64 `json:"extendedValue,omitempty" yaml:"extendedValue" toml:"extendedValue"`
	NetWeightKg      *float64 `json:"netWeightKg,omitempty" yaml:"netWeightKg" toml:"netWeightKg"`
	HTSCode          string   `json:"htsCode" yaml:"htsCode" toml:"htsCode"`
	CountryOfOrigin  string   `json:"countryOfOrigin,omitempty" yaml:"countryOfOrigin" toml:"countryOfOrigin"`
	IsDangerousGoods bool     `json:"isDangerousGoods" yaml:"isDangerousGoods" toml:"isDangerousGoods"`
	DGUnNumber       string   `json:"dgUnNumber,omitempty" yaml:"dgUnNumber" toml:"dgUnNumber"`
	DGHazardClass    string   `json:"dgHazardClass,omitempty" yaml:"dgHazardClass" toml:"dgHazardClass"`
}

// ShipmentInput is the on-disk shape accepted by the validate command
type ShipmentInput struct {
	Shipment  Shipment   `json:"shipment" yaml:"shipment" toml:"shipment"`
	LineItems []LineItem `json:"lineItems" yaml:"lineItems" toml:"lineItems"`
}

// Float returns a pointer to v (for building shipments in code)
func Float(v float64) *float64 {
	return &v
}

// ValueOr dereferences p, falling back to def for nil
func ValueOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

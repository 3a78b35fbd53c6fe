package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/customsdoc/internal/extract/adapters"
	"github.com/ppiankov/customsdoc/internal/model"
)

// ErrUnsupportedShipmentFormat is returned for shipment files that are not
// json, yaml or toml
var ErrUnsupportedShipmentFormat = errors.New("unsupported shipment format")

// ShipmentFormats lists the accepted shipment file extensions
var ShipmentFormats = []string{"json", "yaml", "yml", "toml"}

// ReadShipment loads a shipment header and its line items from a json, yaml
// or toml file.
func ReadShipment(path string, maxBytes int64) (*model.ShipmentInput, error) {
	ext := adapters.Extension(path)
	if !slices.Contains(ShipmentFormats, ext) {
		return nil, fmt.Errorf("%w: .%s (want %s)", ErrUnsupportedShipmentFormat, ext, strings.Join(ShipmentFormats, ", "))
	}

	src, err := ReadSource(path, maxBytes)
	if err != nil {
		return nil, err
	}

	in, err := DecodeShipment(ext, src.Data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", src.Path, err)
	}
	return in, nil
}

// DecodeShipment decodes data in the given format
func DecodeShipment(format string, data []byte) (*model.ShipmentInput, error) {
	var in model.ShipmentInput

	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&in); err != nil {
			return nil, err
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &in); err != nil {
			return nil, err
		}
	case "toml":
		if _, err := toml.Decode(string(data), &in); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedShipmentFormat, format)
	}

	if in.LineItems == nil {
		in.LineItems = []model.LineItem{}
	}
	return &in, nil
}

package adapters

import (
	"github.com/ppiankov/customsdoc/internal/extract"
	"github.com/ppiankov/customsdoc/internal/model"
)

// DelimitedAdapter handles '#'-header manifests with a delimited table
type DelimitedAdapter struct {
	name       string
	extensions []string
	parser     *extract.DelimitedParser
}

// NewDelimitedAdapter creates a delimited adapter for the given extensions
func NewDelimitedAdapter(name string, delimiter rune, extensions ...string) *DelimitedAdapter {
	return &DelimitedAdapter{
		name:       name,
		extensions: extensions,
		parser:     extract.NewDelimitedParser(extract.WithDelimiter(delimiter)),
	}
}

func (a *DelimitedAdapter) Name() string { return a.name }

func (a *DelimitedAdapter) Extensions() []string { return a.extensions }

func (a *DelimitedAdapter) Parse(data []byte) (model.CanonicalDocument, error) {
	return a.parser.Parse(data)
}

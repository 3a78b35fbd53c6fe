package adapters

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/customsdoc/internal/model"
)

// ErrUnsupportedExtension is returned when no adapter handles a file extension
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// Adapter defines the interface for format-specific parsers
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// Extensions lists the lower-case file extensions (without dot) it handles
	Extensions() []string

	// Parse turns a fully buffered source document into its canonical form
	Parse(data []byte) (model.CanonicalDocument, error)
}

// Registry manages format adapters
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a registry with the built-in adapters
func NewRegistry(csvDelimiter rune) *Registry {
	registry := &Registry{
		adapters: make([]Adapter, 0),
	}

	registry.Register(NewDelimitedAdapter("csv", csvDelimiter, "csv", "txt"))
	registry.Register(NewDelimitedAdapter("tsv", '\t', "tsv"))
	registry.Register(NewLayoutAdapter())

	return registry
}

// Register registers a new adapter. Later registrations win on overlapping extensions.
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter finds the adapter for a file path by its extension
func (r *Registry) FindAdapter(path string) (Adapter, error) {
	ext := Extension(path)
	for i := len(r.adapters) - 1; i >= 0; i-- {
		for _, e := range r.adapters[i].Extensions() {
			if e == ext {
				return r.adapters[i], nil
			}
		}
	}
	return nil, fmt.Errorf("%w: .%s. Supported: %s", ErrUnsupportedExtension, ext, strings.Join(r.Supported(), ", "))
}

// Supported returns every handled extension, sorted
func (r *Registry) Supported() []string {
	seen := make(map[string]bool)
	var out []string
	for _, a := range r.adapters {
		for _, e := range a.Extensions() {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Extension returns the lower-case extension of path without the dot
func Extension(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

package adapters

import (
	"github.com/ppiankov/customsdoc/internal/extract"
	"github.com/ppiankov/customsdoc/internal/model"
)

// LayoutAdapter handles hOCR output from an upstream OCR engine
type LayoutAdapter struct{}

// NewLayoutAdapter creates a new layout adapter
func NewLayoutAdapter() *LayoutAdapter {
	return &LayoutAdapter{}
}

func (a *LayoutAdapter) Name() string { return "hocr" }

func (a *LayoutAdapter) Extensions() []string { return []string{"hocr", "html", "htm"} }

func (a *LayoutAdapter) Parse(data []byte) (model.CanonicalDocument, error) {
	return extract.ParseLayoutDocument(string(data))
}

package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Renderer writes documents and reports as JSON
type Renderer struct {
	pretty bool
}

// NewRenderer creates a renderer; pretty output is indented by two spaces
func NewRenderer(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

// Write encodes v to w followed by a newline
func (r *Renderer) Write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if r.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// WriteFile encodes v to path, creating parent directories
func (r *Renderer) WriteFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := r.Write(f, v); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

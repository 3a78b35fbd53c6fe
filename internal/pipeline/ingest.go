package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/ppiankov/customsdoc/internal/model"
)

// Ingest parses an in-memory document. name only selects the adapter by its
// extension.
func (p *Pipeline) Ingest(ctx context.Context, name string, data []byte) (*model.CanonicalDocument, error) {
	adapter, err := p.adapters.FindAdapter(name)
	if err != nil {
		return nil, err
	}

	_, span := p.tracer.Start(ctx, "pipeline.ingest")
	defer span.End()
	span.SetAttributes(
		attribute.String("adapter", adapter.Name()),
		attribute.Int("bytes", len(data)),
	)

	if p.maxBytes > 0 && int64(len(data)) > p.maxBytes {
		err := fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, len(data), p.maxBytes)
		p.metrics.ObserveIngest(adapter.Name(), len(data), err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	doc, err := adapter.Parse(data)
	p.metrics.ObserveIngest(adapter.Name(), len(data), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Debug().Err(err).Str("name", name).Str("adapter", adapter.Name()).Msg("parse failed")
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	p.logger.Debug().
		Str("name", name).
		Str("adapter", adapter.Name()).
		Int("lines", len(doc.Lines)).
		Int("notes", len(doc.Meta.Normalization)).
		Msg("document ingested")
	return &doc, nil
}

// IngestFile reads path and parses it. A missing file is reported before an
// unsupported extension.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*model.CanonicalDocument, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve path: %w", err)
	}
	if _, err := os.Stat(abs); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, abs)
	}
	if _, err := p.adapters.FindAdapter(abs); err != nil {
		return nil, err
	}

	src, err := ReadSource(abs, p.maxBytes)
	if err != nil {
		return nil, err
	}
	return p.Ingest(ctx, src.Path, src.Data)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/customsdoc/internal/extract/adapters"
	"github.com/ppiankov/customsdoc/internal/pipeline"
)

var (
	parseOutput  string
	parseCompact bool
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Parse a trade document into its canonical JSON form",
	Long: `Parse reads one trade document and prints the canonical document:
- .csv / .txt   '#'-commented header block, blank line, comma-delimited table
- .tsv          same layout, tab-delimited
- .hocr / .html OCR output of a commercial invoice (hOCR)

The header (shipper, consignee, incoterm, currency, reference), the line
items, column checksums and an audit trail of normalizations are emitted.

Example:
  customsdoc parse manifest.csv
  customsdoc parse invoice.hocr -o invoice.json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "", "write JSON to this path instead of stdout")
	parseCmd.Flags().BoolVar(&parseCompact, "compact", false, "emit single-line JSON")
}

func runParse(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()

	abs, err := filepath.Abs(args[0])
	if err != nil {
		return fail(ExitFailure, err, "Invalid path %q: %v", args[0], err)
	}

	p, err := pipeline.FromConfig(cfg, nil, pipeline.WithLogger(logger))
	if err != nil {
		return fail(ExitFailure, err, "Invalid configuration: %v", err)
	}

	progressf(cmd, "Parsing: %s\n", abs)

	doc, err := p.IngestFile(context.Background(), abs)
	if err != nil {
		return describeIngestError(p, abs, err)
	}

	progressf(cmd, "✓ Extracted %d line items\n", len(doc.Lines))

	renderer := pipeline.NewRenderer(!parseCompact)
	if parseOutput != "" {
		if err := renderer.WriteFile(parseOutput, doc); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		progressf(cmd, "✓ Wrote %s\n", parseOutput)
		return nil
	}
	return renderer.Write(cmd.OutOrStdout(), doc)
}

// describeIngestError turns pipeline errors into the user-facing messages
// the parse command promises
func describeIngestError(p *pipeline.Pipeline, abs string, err error) error {
	switch {
	case errors.Is(err, pipeline.ErrFileNotFound):
		return fail(ExitFailure, err, "File not found: %s", abs)
	case errors.Is(err, adapters.ErrUnsupportedExtension):
		return fail(ExitFailure, err, "Unsupported file extension: .%s. Supported: %s",
			adapters.Extension(abs), strings.Join(p.Adapters().Supported(), ", "))
	default:
		return fail(ExitFailure, err, "Parse failed: %v", err)
	}
}

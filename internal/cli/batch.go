package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/customsdoc/internal/metrics"
	"github.com/ppiankov/customsdoc/internal/model"
	"github.com/ppiankov/customsdoc/internal/pipeline"
	"github.com/ppiankov/customsdoc/internal/worker"
)

var (
	outputDir    string
	metricsFile  string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <dir-or-list>",
	Short: "Parse many trade documents in parallel",
	Long: `Batch parses every supported document in a directory (non-recursive), or
every path listed in a text file (one per line, '#' comments allowed):
- Documents are parsed concurrently by a bounded worker pool
- Each canonical document is written to <output-dir>/<name>.json
- Failures are reported per file and do not stop the batch

Example:
  customsdoc batch ./inbox
  customsdoc batch files.txt --concurrency 8 --output-dir ./canonical
  customsdoc batch ./inbox --metrics-file /var/lib/node_exporter/customsdoc.prom`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	defaults := model.DefaultConfig()

	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./customsdoc-out", "output directory for canonical documents")
	batchCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile when done")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().Int("concurrency", defaults.Concurrency.BatchWorkers, "number of concurrent workers")

	_ = viper.BindPFlag("concurrency.batch_workers", batchCmd.Flags().Lookup("concurrency"))
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()
	stderr := cmd.ErrOrStderr()
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	reg := prometheus.NewRegistry()
	p, err := pipeline.FromConfig(cfg, nil,
		pipeline.WithLogger(logger),
		pipeline.WithMetrics(metrics.New(reg)),
	)
	if err != nil {
		return fail(ExitFailure, err, "Invalid configuration: %v", err)
	}

	keep := func(path string) bool {
		_, err := p.Adapters().FindAdapter(path)
		return err == nil
	}
	paths, err := worker.CollectPaths(args[0], keep)
	if err != nil {
		return fail(ExitFailure, err, "Cannot read batch input: %v", err)
	}

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Input:        %s\n", args[0])
	fmt.Fprintf(stderr, "  Documents:    %d\n", len(paths))
	fmt.Fprintf(stderr, "  Workers:      %d\n", cfg.Concurrency.BatchWorkers)
	fmt.Fprintf(stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	processor := worker.NewBatchProcessor(p, cfg.Concurrency.BatchWorkers)
	results := processor.ProcessFiles(ctx, paths)

	renderer := pipeline.NewRenderer(cfg.Output.Pretty)
	names := make(map[string]int)
	failures := 0

	for _, result := range results {
		if result.Error != nil {
			failures++
			fmt.Fprintf(stderr, "✗ %s: %v\n", result.Path, result.Error)
			continue
		}

		out := filepath.Join(outputDir, outputName(result.Path, names))
		if err := renderer.WriteFile(out, result.Document); err != nil {
			failures++
			fmt.Fprintf(stderr, "✗ %s: %v\n", result.Path, err)
			continue
		}
		fmt.Fprintf(stderr, "✓ %s (%d lines, %s)\n", result.Path, len(result.Document.Lines), result.Duration.Round(time.Millisecond))
	}

	fmt.Fprintf(stderr, "\n")
	fmt.Fprintf(stderr, "  Total:     %d\n", len(results))
	fmt.Fprintf(stderr, "  Success:   %d\n", len(results)-failures)
	fmt.Fprintf(stderr, "  Failures:  %d\n", failures)
	fmt.Fprintf(stderr, "\n")

	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	if failures > 0 {
		return fail(ExitFailure, nil, "%d of %d documents failed", failures, len(results))
	}
	return nil
}

// outputName derives "<name>.json" from a source path, suffixing repeats
// ("invoice-2.json") so same-named inputs from different directories or
// extensions do not overwrite each other
func outputName(path string, seen map[string]int) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" {
		name = base
	}
	seen[name]++
	if n := seen[name]; n > 1 {
		return fmt.Sprintf("%s-%d.json", name, n)
	}
	return name + ".json"
}

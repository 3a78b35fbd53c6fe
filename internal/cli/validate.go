package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/customsdoc/internal/model"
	"github.com/ppiankov/customsdoc/internal/pipeline"
	"github.com/ppiankov/customsdoc/internal/tariff"
)

var (
	strict          bool
	validateCompact bool
	validateTimeout time.Duration
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <shipment.{json,yaml,yml,toml}>",
	Short: "Check a shipment against the trade-compliance rules",
	Long: `Validate runs every enabled rule over a shipment header and its line items
and prints the merged report:
- parties, line items and numeric consistency
- HTS code format and (optionally) reference lookup
- Incoterm, EEI filing and dangerous goods declarations

Issues are data: the command succeeds even when issues are found, unless
--strict is set and at least one issue has "error" severity (exit code 2).

Example:
  customsdoc validate shipment.json
  customsdoc validate shipment.yaml --strict
  customsdoc validate shipment.toml --disable eei,incoterm --tariff-source file --tariff-path codes.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	defaults := model.DefaultConfig()

	validateCmd.Flags().BoolVar(&strict, "strict", false, "exit with code 2 when the report is blocking")
	validateCmd.Flags().BoolVar(&validateCompact, "compact", false, "emit single-line JSON")
	validateCmd.Flags().DurationVar(&validateTimeout, "timeout", time.Minute, "overall validation timeout")

	// Config-backed flags
	validateCmd.Flags().Bool("fail-fast", defaults.Validation.FailFast, "abort on the first rule that fails to execute")
	validateCmd.Flags().String("disable", "", "comma-separated rule names to skip")
	validateCmd.Flags().String("tariff-source", defaults.Tariff.Source, "tariff registry (static, file, http, postgres)")
	validateCmd.Flags().String("tariff-path", "", "tariff code file for --tariff-source file")

	_ = viper.BindPFlag("validation.fail_fast", validateCmd.Flags().Lookup("fail-fast"))
	_ = viper.BindPFlag("validation.disabled_rules", validateCmd.Flags().Lookup("disable"))
	_ = viper.BindPFlag("tariff.source", validateCmd.Flags().Lookup("tariff-source"))
	_ = viper.BindPFlag("tariff.path", validateCmd.Flags().Lookup("tariff-path"))
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()
	ctx, cancel := context.WithTimeout(context.Background(), validateTimeout)
	defer cancel()

	abs, err := filepath.Abs(args[0])
	if err != nil {
		return fail(ExitFailure, err, "Invalid path %q: %v", args[0], err)
	}

	in, err := pipeline.ReadShipment(abs, cfg.Ingest.MaxBytes)
	switch {
	case errors.Is(err, pipeline.ErrFileNotFound):
		return fail(ExitFailure, err, "File not found: %s", abs)
	case errors.Is(err, pipeline.ErrUnsupportedShipmentFormat):
		return fail(ExitFailure, err, "Unsupported shipment format: %v", err)
	case err != nil:
		return fail(ExitFailure, err, "Read shipment failed: %v", err)
	}

	registry, err := tariff.Open(ctx, cfg.Tariff, logger)
	if err != nil {
		return fail(ExitFailure, err, "Tariff registry unavailable: %v", err)
	}
	defer func() {
		if err := registry.Close(); err != nil {
			logger.Warn().Err(err).Msg("close tariff registry")
		}
	}()

	p, err := pipeline.FromConfig(cfg, registry, pipeline.WithLogger(logger))
	if err != nil {
		return fail(ExitFailure, err, "Invalid configuration: %v", err)
	}

	progressf(cmd, "Validating: %s (%d line items, %d rules)\n", abs, len(in.LineItems), len(p.Rules()))

	report, err := p.Validate(ctx, &in.Shipment, in.LineItems)
	if err != nil {
		return fail(ExitFailure, err, "Validation aborted: %v", err)
	}

	if err := pipeline.NewRenderer(!validateCompact).Write(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	progressf(cmd, "✓ %d errors, %d warnings, %d info\n",
		report.Counts[model.SeverityError], report.Counts[model.SeverityWarning], report.Counts[model.SeverityInfo])

	if strict && report.Blocking {
		return fail(ExitBlocking, nil, "Shipment is blocking: %d error-severity issue(s)", report.Counts[model.SeverityError])
	}
	return nil
}

// describeRules formats the enabled/disabled state of every built-in rule
func describeRules(cfg *model.Config) ([][2]string, error) {
	p, err := pipeline.FromConfig(cfg, tariff.NewDefaultRegistry())
	if err != nil {
		return nil, err
	}
	enabled := make(map[string]bool)
	for _, r := range p.Rules() {
		enabled[r.Name()] = true
	}

	all := model.DefaultConfig()
	all.Validation.DisabledRules = nil
	full, err := pipeline.FromConfig(all, tariff.NewDefaultRegistry())
	if err != nil {
		return nil, err
	}

	var rows [][2]string
	for _, r := range full.Rules() {
		state := "disabled"
		if enabled[r.Name()] {
			state = "enabled"
		}
		rows = append(rows, [2]string{r.Name(), state})
	}
	return rows, nil
}

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List validation rules in evaluation order",
	Long: `List every built-in rule in the order its issues appear in reports,
and whether the current configuration (validation.disabled_rules) enables it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows, err := describeRules(currentConfig())
		if err != nil {
			return fail(ExitFailure, err, "Invalid configuration: %v", err)
		}
		for _, row := range rows {
			fmt.Fprintf(cmd.OutOrStdout(), "%-22s %s\n", row[0], row[1])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/customsdoc/internal/logging"
	"github.com/ppiankov/customsdoc/internal/model"
)

// Version is overridden at build time with -ldflags "-X ...cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile string
	verbose bool
	logLvl  string
	logJSON bool

	// appConfig and logger are set by PersistentPreRunE before any command runs
	appConfig *model.Config
	logger    = zerolog.Nop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "customsdoc",
	Short: "customsdoc - Customs document ingestion and pre-submission validation",
	Long: `customsdoc turns heterogeneous trade documents (delimited manifests and
OCR'd commercial invoices) into one canonical document shape, and checks
shipments against trade-compliance rules before they are filed.

It does not file anything with a customs authority. Issues are advisory
unless they carry "error" severity, in which case the shipment is blocking.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		appConfig = cfg
		logger = logging.Init(cfg.Log.Level, cfg.Log.JSON)
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug().Str("path", used).Msg("using config file")
		}
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of customsdoc.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "customsdoc %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := model.DefaultConfig()

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.customsdoc/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", defaults.Output.Verbose, "verbose progress output on stderr")
	rootCmd.PersistentFlags().StringVar(&logLvl, "log-level", defaults.Log.Level, "log level (trace, debug, info, warn, error, off)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", defaults.Log.JSON, "emit logs as JSON lines")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.json", rootCmd.PersistentFlags().Lookup("log-json"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".customsdoc"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match CUSTOMSDOC_* (nested keys use
	// underscores, e.g. CUSTOMSDOC_TARIFF_SOURCE)
	viper.SetEnvPrefix("CUSTOMSDOC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	registerDefaults()

	// A missing config file is fine; defaults apply
	_ = viper.ReadInConfig()
}

// registerDefaults makes every config key known to viper so env overrides
// apply to keys absent from the config file
func registerDefaults() {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return
	}
	var sections map[string]any
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return
	}
	for key, value := range sections {
		viper.SetDefault(key, value)
	}
	// omitempty keys are missing from the marshaled defaults
	for _, key := range []string{"tariff.path", "tariff.url", "tariff.dsn", "tariff.http_proxy", "tariff.cache.disk_dir", "tariff.cache.redis_addr"} {
		viper.SetDefault(key, "")
	}
}

// loadConfig merges defaults, config file, env and flags into a Config
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// currentConfig returns the loaded configuration, falling back to defaults when a
// command runs without the root pre-run (tests calling RunE directly)
func currentConfig() *model.Config {
	if appConfig == nil {
		return model.DefaultConfig()
	}
	return appConfig
}

// progressf prints progress to stderr when --verbose is set
func progressf(cmd *cobra.Command, format string, args ...any) {
	if currentConfig().Output.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
	}
}

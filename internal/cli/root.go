// Package cli wires the cobra command tree for the codehub binary.
package cli

import (
	"os"

	"github.com/jacobmentalconstruct/codehub/internal/config"
	"github.com/jacobmentalconstruct/codehub/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "codehub",
	Short: "Serve a project directory as a browsable code index",
	Long: `Codehub scans a local project directory, filters it through .gitignore
patterns and a text-file allow-list, and serves the result as a browsable
index for feeding source code to language-model tooling: either an
interactive page backed by JSON APIs, or a single consolidated HTML export.`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// setup loads configuration, applies flag overrides for flags the user
// actually set, and builds the logger.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("directory") {
		cfg.Root, _ = flags.GetString("directory")
	}
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}

	logger, err := logging.New(verbose || cfg.Verbose)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

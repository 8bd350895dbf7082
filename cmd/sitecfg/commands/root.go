package commands

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"sitecfg/internal/config"
	"sitecfg/internal/logging"
)

const defaultConfigFile = "site.yaml"

var (
	// Global flags
	configPath string
	strict     bool
	logOpts    logging.Options

	closeLog = func() {}
)

// Execute runs the root command.
func Execute(ctx context.Context, version string) error {
	return execute(ctx, newRootCommand(version))
}

// execute closes the log file on every exit path; cobra skips post-run
// hooks when a command fails.
func execute(ctx context.Context, cmd *cobra.Command) error {
	defer func() {
		closeLog()
		closeLog = func() {}
	}()
	return cmd.ExecuteContext(ctx)
}

func newRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sitecfg",
		Short: "sitecfg - settings for a static site",
		Long: `sitecfg loads, checks and exports the settings a static site generator
reads at build start: site name, author, theme, timezone, language, feeds,
blogroll and social links, pagination, relative URLs and plugins.

Settings files may be YAML, TOML, JSON or an existing pelicanconf.py.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			closer, err := logging.Setup(logOpts)
			if err != nil {
				return err
			}
			closeLog = closer
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", defaultConfigFile, "settings file (.yaml, .toml, .json or .py)")
	flags.BoolVar(&strict, "strict", false, "reject settings this tool does not know")
	flags.StringVar(&logOpts.Level, "log-level", "", "log level (default $LOG_LEVEL or info)")
	flags.StringVar(&logOpts.File, "log-file", "", "also write JSON logs to this rotated file")
	flags.StringVar(&logOpts.ConfigPath, "log-config", "", "zeroconfig YAML file describing log outputs")

	rootCmd.AddCommand(newCheckCommand())
	rootCmd.AddCommand(newShowCommand())
	rootCmd.AddCommand(newImportCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newServeCommand())

	return rootCmd
}

func newLoader() *config.Loader {
	return &config.Loader{Strict: strict}
}

// loadSettings reads the settings file named by --config.
func loadSettings() (config.SiteConfig, error) {
	return newLoader().Load(configPath)
}

// loadValidSettings reads and validates the settings file.
func loadValidSettings() (config.SiteConfig, error) {
	cfg, err := loadSettings()
	if err != nil {
		return config.SiteConfig{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.SiteConfig{}, err
	}
	return cfg, nil
}

func configDir() string {
	return filepath.Dir(configPath)
}

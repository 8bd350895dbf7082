package commands

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"sitecfg/internal/export"
)

func newImportCommand() *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "import <settings-file>",
		Short: "Convert a settings file, such as pelicanconf.py, to another format",
		Example: `  # Move an existing Pelican site to site.yaml
  sitecfg import pelicanconf.py

  # Produce a pelicanconf.py for the generator
  sitecfg import site.yaml -o pelicanconf.py`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := newLoader().Load(args[0])
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to replace it", output)
			}
			if err := export.WriteFile(output, cfg); err != nil {
				return err
			}
			log.Info().Str("from", args[0]).Str("to", output).Msg("settings imported")
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %s.\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultConfigFile, "file to write; the extension picks the format")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing output file")
	return cmd
}

package commands

import (
	"github.com/spf13/cobra"

	"sitecfg/internal/export"
)

func newShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the resolved settings",
		Example: `  # Settings as the generator sees them
  sitecfg show --format py

  # Convert a TOML file to JSON
  sitecfg -c site.toml show`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.FormatFor(format, "")
			if err != nil {
				return err
			}
			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			return export.Write(cmd.OutOrStdout(), cfg, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, yaml or py")
	return cmd
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the settings file",
		Long: `Load the settings file and validate every setting:
  - required text settings are present
  - TIMEZONE is an IANA zone and DEFAULT_LANG a language tag
  - every LINKS and SOCIAL entry is a (label, absolute URL) pair
  - plugin settings contain no control characters

Missing theme or plugin directories are reported as warnings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadValidSettings()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, w := range cfg.CheckPaths(configDir()) {
				fmt.Fprintf(out, "⚠️  %s\n", w)
			}
			fmt.Fprintf(out, "✅ %s is valid.\n", configPath)
			return nil
		},
	}
}

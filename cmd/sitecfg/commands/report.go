package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sitecfg/internal/report"
)

func newReportCommand() *cobra.Command {
	var asHTML, unsafe bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a Markdown or HTML reference of the settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings()
			if err != nil {
				return err
			}
			var out string
			if asHTML {
				out, err = report.HTML(cfg, unsafe)
			} else {
				out, err = report.Markdown(cfg)
			}
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "render HTML instead of Markdown")
	cmd.Flags().BoolVar(&unsafe, "unsafe", false, "disable HTML sanitization")
	return cmd
}

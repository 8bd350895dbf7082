package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"sitecfg/internal/scaffold"
)

func newInitCommand() *cobra.Command {
	var opts scaffold.Options

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a new site.yaml with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			path, err := scaffold.CreateNewSite(dir, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Site scaffolded in %s. You can now:\n", dir)
			fmt.Fprintf(out, "  sitecfg -c %s check\n", path)
			fmt.Fprintf(out, "  sitecfg -c %s serve\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.SiteName, "sitename", "", "site title")
	cmd.Flags().StringVar(&opts.Author, "author", "", "site author")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite an existing site.yaml")
	return cmd
}

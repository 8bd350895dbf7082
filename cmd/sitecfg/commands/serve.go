package commands

import (
	"github.com/spf13/cobra"

	"sitecfg/internal/config"
	"sitecfg/internal/server"
)

func newServeCommand() *cobra.Command {
	var opts server.Options

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the settings and a live-reloading report",
		Long: `Run a local server exposing the current settings:
  /settings.json, /settings.yaml, /settings.py   settings as the generator reads them
  /report                                         HTML reference, reloads on change
  /ws                                             websocket sending "reload" after each change`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadValidSettings()
			if err != nil {
				return err
			}
			holder := config.NewHolder(cfg, newLoader(), configPath)
			return server.New(holder, opts).Run(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&opts.Port, "port", 1313, "port for the local server")
	cmd.Flags().BoolVar(&opts.Unsafe, "unsafe", false, "disable HTML sanitization of the report")
	return cmd
}

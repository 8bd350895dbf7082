package commands

import (
	"github.com/spf13/cobra"

	"sitecfg/internal/config"
)

func newWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload and validate the settings file whenever it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadValidSettings()
			if err != nil {
				return err
			}
			holder := config.NewHolder(cfg, newLoader(), configPath)
			return holder.Watch(cmd.Context())
		},
	}
}

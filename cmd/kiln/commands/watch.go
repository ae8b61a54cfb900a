package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/kiln/internal/app"
)

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Build, then rebuild on change and serve the output with live reload",
		Args:  cobra.NoArgs,
		RunE:  c.runWatch,
	}
	addServeFlags(cmd)
	return cmd
}

func addServeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("host", "H", "", "Dev server host (default from config, localhost)")
	cmd.Flags().IntP("port", "p", 0, "Dev server port (default from config, 3000)")
}

func (c *CLI) runWatch(cmd *cobra.Command, _ []string) error {
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")

	return c.app.Watch(cmd.Context(), app.WatchOptions{
		Options:      options(cmd),
		Host:         host,
		Port:         port,
		OverridePort: cmd.Flags().Changed("port"),
	})
}

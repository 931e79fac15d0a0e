package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sheetbridge/sheetbridge/internal/api"
	"github.com/sheetbridge/sheetbridge/internal/config"
	"github.com/sheetbridge/sheetbridge/internal/controller"
	"github.com/sheetbridge/sheetbridge/internal/state"
	"github.com/sheetbridge/sheetbridge/internal/tui"
)

func newBrowseCmd(flags *rootFlags) *cobra.Command {
	var backend string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse your spreadsheets in the terminal",
		Long: "Browse connects to a running sheetbridge server, walks you through\n" +
			"the Google sign-in if needed, and lets you preview sheets and send\n" +
			"them to the backend.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.ConfigPath)
			if err != nil {
				return err
			}
			if backend != "" {
				cfg.BackendURL = backend
			}

			client, err := api.NewClient(cfg.BackendURL)
			if err != nil {
				return err
			}
			nav, err := tui.NewLoopbackNavigator(cfg.FrontendURL)
			if err != nil {
				return err
			}

			store := &state.Store{}
			ctrl := controller.New(client, store, nav)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return tui.Run(ctx, ctrl, store, nav)
		},
	}

	cmd.Flags().StringVar(&backend, "backend", "", "Backend base URL (overrides config)")
	return cmd
}

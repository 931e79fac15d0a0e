package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sheetbridge/sheetbridge/internal/api"
	"github.com/sheetbridge/sheetbridge/internal/config"
)

func newAuthCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Inspect and manage the Google session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newAuthStatusCmd(flags))
	cmd.AddCommand(newAuthLoginCmd(flags))
	cmd.AddCommand(newAuthLogoutCmd(flags))
	return cmd
}

func backendClient(flags *rootFlags) (*api.Client, error) {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	return api.NewClient(cfg.BackendURL)
}

func newAuthStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a Google session is active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := backendClient(flags)
			if err != nil {
				return err
			}
			if client.AuthStatus(cmd.Context()) {
				fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			}
			return nil
		},
	}
}

func newAuthLoginCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Print the Google consent URL",
		Long: "Login asks the server for a consent URL. Open it in a browser to\n" +
			"complete the sign-in; the server stores the session.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := backendClient(flags)
			if err != nil {
				return err
			}
			authURL, err := client.BeginLogin(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Open this URL to sign in:")
			fmt.Fprintln(cmd.OutOrStdout(), authURL)
			return nil
		},
	}
}

func newAuthLogoutCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate the Google session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := backendClient(flags)
			if err != nil {
				return err
			}
			if err := client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

// Package cli — proxy.go implements the "dockertree proxy" command tree for
// the shared Caddy reverse-proxy container every worktree joins.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/catalpainternational/dockertree/internal/model"
)

func NewProxyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proxy",
		Short: "Manage the shared reverse-proxy container",
	}
	cmd.AddCommand(newProxyStartCommand())
	cmd.AddCommand(newProxyStopCommand())
	cmd.AddCommand(newProxyStatusCommand())
	return cmd
}

func newProxyStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the shared reverse-proxy container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.proxy.Start(cmd.Context(), ""); err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "failed to start shared proxy", err)
			}
			printResult(model.OkWithMessage(nil, "shared proxy started"))
			return nil
		},
	}
}

func newProxyStopCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the shared reverse-proxy container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.proxy.Stop(cmd.Context()); err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "failed to stop shared proxy", err)
			}
			printResult(model.OkWithMessage(nil, "shared proxy stopped"))
			return nil
		},
	}
}

func newProxyStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the shared reverse-proxy container is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			status, err := a.proxy.GetStatus(cmd.Context())
			if err != nil {
				return model.WrapCLIError(model.ExitGeneralError, "failed to read shared proxy status", err)
			}
			printResult(model.Ok(map[string]interface{}{
				"running":             status.Running,
				"compose_file_exists": status.ComposeFileExists,
				"caddyfile_exists":    status.CaddyfileExists,
				"network_exists":      status.NetworkExists,
			}))
			return nil
		},
	}
}

// Package cli — list.go implements the "dockertree list" command.
package cli

import (
	"github.com/spf13/cobra"
)

// NewListCommand creates the "list" cobra command.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all worktree environments",
		Long: `List every worktree this project's Git repository currently tracks.

Examples:
  dockertree list
  dockertree list --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList()
		},
	}
	return cmd
}

func runList() error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	result := a.orch.List()
	if !result.Success {
		return resultToErr(result)
	}
	printResult(result)
	return nil
}

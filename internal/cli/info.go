// Package cli — info.go implements the "dockertree info" command.
package cli

import (
	"github.com/spf13/cobra"
)

func NewInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <branch>",
		Short: "Show details for a worktree environment",
		Long: `Show the worktree path, container statuses, port allocations, and volume
names for the given branch.

Examples:
  dockertree info feature-auth
  dockertree info --json feature-auth`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}
	return cmd
}

func runInfo(branch string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	result := a.orch.Info(branch)
	if !result.Success {
		return resultToErr(result)
	}
	printResult(result)
	return nil
}

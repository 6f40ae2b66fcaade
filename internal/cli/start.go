// Package cli — start.go implements the "dockertree start" command.
package cli

import (
	"github.com/spf13/cobra"
)

func NewStartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <branch>",
		Short: "Start a stopped worktree environment",
		Long: `Start all containers for the given branch's worktree environment.

Examples:
  dockertree start feature-auth
  dockertree start --json feature-auth`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(args[0])
		},
	}
	return cmd
}

func runStart(branch string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	result := a.orch.Start(branch)
	if !result.Success {
		return resultToErr(result)
	}
	printResult(result)
	return nil
}

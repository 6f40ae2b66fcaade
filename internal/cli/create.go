// Package cli — create.go implements the "dockertree create" command.
package cli

import (
	"github.com/spf13/cobra"
)

type createFlags struct {
	noStart bool
}

// NewCreateCommand creates the "create" cobra command.
func NewCreateCommand() *cobra.Command {
	flags := &createFlags{}

	cmd := &cobra.Command{
		Use:   "create <branch>",
		Short: "Create a new worktree environment",
		Long: `Create a Git worktree for the given branch, clone its per-worktree
volumes from the project's source volumes, and start its containers.

Examples:
  dockertree create feature-auth
  dockertree create --no-start bugfix-login`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noStart, "no-start", false, "Create the worktree only, don't start containers")

	return cmd
}

func runCreate(branch string, flags *createFlags) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	result := a.orch.Create(branch)
	if !result.Success {
		return resultToErr(result)
	}

	if !flags.noStart {
		VerboseLog("Starting containers for branch %q...", branch)
		startResult := a.orch.Start(branch)
		if !startResult.Success {
			return resultToErr(startResult)
		}
		result = startResult
	}

	printResult(result)
	return nil
}

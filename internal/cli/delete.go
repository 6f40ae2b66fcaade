// Package cli — delete.go implements the "dockertree delete" command.
//
// delete is remove with the branch deletion always on — a convenience
// alias for the common case of fully retiring a feature branch.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/catalpainternational/dockertree/internal/model"
)

type deleteFlags struct {
	force bool
}

func NewDeleteCommand() *cobra.Command {
	flags := &deleteFlags{}
	cmd := &cobra.Command{
		Use:   "delete <branch>",
		Short: "Remove a worktree environment and delete its branch",
		Long: `Stop and remove a branch's containers and volumes, remove its worktree
directory, and delete the Git branch.

Unless --force is given, the command asks for confirmation first.

Examples:
  dockertree delete feature-auth
  dockertree delete --force feature-auth`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(args[0], flags)
		},
	}
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Delete without confirmation")
	return cmd
}

func runDelete(branch string, flags *deleteFlags) error {
	if !flags.force {
		confirmed, err := promptConfirmation(branch, true)
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to read user input", err)
		}
		if !confirmed {
			return model.NewCLIError(model.ExitUserCancelled, "operation cancelled by user")
		}
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	result := a.orch.Delete(branch, flags.force)
	if !result.Success {
		return resultToErr(result)
	}
	printResult(result)
	return nil
}

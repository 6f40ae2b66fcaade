// Package cli — remove.go implements the "dockertree remove" command.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/catalpainternational/dockertree/internal/model"
)

type removeFlags struct {
	force        bool
	deleteBranch bool
}

func NewRemoveCommand() *cobra.Command {
	flags := &removeFlags{deleteBranch: true}
	cmd := &cobra.Command{
		Use:   "remove <branch>",
		Short: "Remove a worktree environment",
		Long: `Stop and remove a branch's containers, delete its per-worktree volumes
and worktree directory, and (unless --delete-branch=false is given) delete
the Git branch itself.

Unless --force is given, the command asks for confirmation first.

Examples:
  dockertree remove feature-auth
  dockertree remove --force feature-auth
  dockertree remove --delete-branch=false feature-auth`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(args[0], flags)
		},
	}
	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Remove without confirmation")
	cmd.Flags().BoolVar(&flags.deleteBranch, "delete-branch", true, "Also delete the Git branch")
	return cmd
}

func runRemove(branch string, flags *removeFlags) error {
	if !flags.force {
		confirmed, err := promptConfirmation(branch, flags.deleteBranch)
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

	result := a.orch.Remove(branch, flags.force, flags.deleteBranch)
	if !result.Success {
		return resultToErr(result)
	}
	printResult(result)
	return nil
}

// promptConfirmation reads a single y/N answer from stdin.
func promptConfirmation(branch string, deleteBranch bool) (bool, error) {
	fmt.Printf("About to remove worktree environment %q:\n", branch)
	fmt.Println("  - containers, built images, and per-worktree volumes will be removed")
	if deleteBranch {
		fmt.Println("  - the git branch will be deleted")
	}
	fmt.Print("\nContinue? [y/N] ")

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		answer := strings.TrimSpace(strings.ToLower(scanner.Text()))
		return answer == "y" || answer == "yes", nil
	}
	return false, scanner.Err()
}

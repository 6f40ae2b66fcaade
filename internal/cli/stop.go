// Package cli — stop.go implements the "dockertree stop" command.
package cli

import (
	"github.com/spf13/cobra"
)

type stopFlags struct {
	removeImages bool
}

func NewStopCommand() *cobra.Command {
	flags := &stopFlags{}
	cmd := &cobra.Command{
		Use:   "stop <branch>",
		Short: "Stop a worktree environment",
		Long: `Stop all containers for the given branch's worktree environment,
preserving its volumes so it can be started again later.

Examples:
  dockertree stop feature-auth
  dockertree stop --remove-images feature-auth`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(args[0], flags)
		},
	}
	cmd.Flags().BoolVar(&flags.removeImages, "remove-images", false, "Also remove the branch's built images")
	return cmd
}

func runStop(branch string, flags *stopFlags) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	result := a.orch.Stop(branch, flags.removeImages)
	if !result.Success {
		return resultToErr(result)
	}
	printResult(result)
	return nil
}

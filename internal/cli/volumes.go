// Package cli — volumes.go implements the "dockertree volumes" command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/catalpainternational/dockertree/internal/config"
	"github.com/catalpainternational/dockertree/internal/model"
)

func NewVolumesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "volumes",
		Short: "Inspect and manage per-worktree volumes",
	}
	cmd.AddCommand(newVolumesListCommand())
	cmd.AddCommand(newVolumesSizeCommand())
	cmd.AddCommand(newVolumesBackupCommand())
	cmd.AddCommand(newVolumesRestoreCommand())
	cmd.AddCommand(newVolumesCleanCommand())
	return cmd
}

// branchVolumeNames returns the volumeType -> docker volume name map for a
// branch's postgres_data/redis_data/media_files volumes.
func branchVolumeNames(projectName, branch string) map[string]string {
	volumes := make(map[string]string, len(model.KnownVolumeTypes))
	for _, t := range model.KnownVolumeTypes {
		volumes[string(t)] = config.VolumeName(projectName, branch, t)
	}
	return volumes
}

func newVolumesListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <branch>",
		Short: "List a branch's volumes and whether each exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVolumesList(cmd.Context(), args[0])
		},
	}
}

func runVolumesList(ctx context.Context, branch string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	status := make(map[string]interface{})
	for volType, name := range branchVolumeNames(a.project.Name, branch) {
		exists, err := a.vol.Exists(ctx, name)
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("checking volume %q", name), err)
		}
		status[volType] = map[string]interface{}{"name": name, "exists": exists}
	}
	printResult(model.Ok(status))
	return nil
}

func newVolumesSizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "size <branch>",
		Short: "Show human-readable disk usage for a branch's volumes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVolumesSize(cmd.Context(), args[0])
		},
	}
}

func runVolumesSize(ctx context.Context, branch string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	sizes := make(map[string]string)
	for volType, name := range branchVolumeNames(a.project.Name, branch) {
		sizes[volType] = a.vol.Size(ctx, name)
	}
	printResult(model.Ok(sizes))
	return nil
}

func newVolumesBackupCommand() *cobra.Command {
	var destDir string
	cmd := &cobra.Command{
		Use:   "backup <branch>",
		Short: "Archive a branch's volumes to a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVolumesBackup(cmd.Context(), args[0], destDir)
		},
	}
	cmd.Flags().StringVar(&destDir, "dest", ".", "Directory to write the volume archives into")
	return cmd
}

func runVolumesBackup(ctx context.Context, branch, destDir string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	volumes := branchVolumeNames(a.project.Name, branch)
	if err := a.vol.Backup(ctx, branch, volumes, destDir); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("backing up volumes for branch %q", branch), err)
	}
	printResult(model.OkWithMessage(volumes, fmt.Sprintf("backed up volumes for branch %q to %s", branch, destDir)))
	return nil
}

func newVolumesRestoreCommand() *cobra.Command {
	var srcDir string
	cmd := &cobra.Command{
		Use:   "restore <branch>",
		Short: "Restore a branch's volumes from a previously made backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVolumesRestore(cmd.Context(), args[0], srcDir)
		},
	}
	cmd.Flags().StringVar(&srcDir, "src", ".", "Directory the volume archives were written to")
	return cmd
}

func runVolumesRestore(ctx context.Context, branch, srcDir string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	volumes := branchVolumeNames(a.project.Name, branch)
	outcome, err := a.vol.Restore(ctx, branch, volumes, srcDir)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("restoring volumes for branch %q", branch), err)
	}
	if !outcome.OK() {
		return model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("restoring volumes for branch %q", branch), fmt.Errorf("failed to restore %v", outcome.Failed))
	}
	if len(outcome.Skipped) > 0 {
		printResult(model.OkWithMessage(outcome, fmt.Sprintf("restored volumes for branch %q from %s (skipped in-use volumes: %v)", branch, srcDir, outcome.Skipped)))
		return nil
	}
	printResult(model.OkWithMessage(outcome, fmt.Sprintf("restored volumes for branch %q from %s", branch, srcDir)))
	return nil
}

func newVolumesCleanCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "clean <branch>",
		Short: "Remove a branch's volumes without touching its containers or worktree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVolumesClean(cmd.Context(), args[0], force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove volumes even if still attached to a container")
	return cmd
}

func runVolumesClean(ctx context.Context, branch string, force bool) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	for volType, name := range branchVolumeNames(a.project.Name, branch) {
		exists, err := a.vol.Exists(ctx, name)
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("checking volume %q", name), err)
		}
		if !exists {
			continue
		}
		if err := a.vol.Remove(ctx, name, force); err != nil {
			return model.WrapCLIError(model.ExitVolumeInUse, fmt.Sprintf("removing %s volume %q", volType, name), err)
		}
	}
	printResult(model.OkWithMessage(nil, fmt.Sprintf("removed volumes for branch %q", branch)))
	return nil
}

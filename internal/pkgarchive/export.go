package pkgarchive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/catalpainternational/dockertree/internal/config"
	"github.com/catalpainternational/dockertree/internal/model"
	"github.com/catalpainternational/dockertree/internal/pathutil"
)

// Export bundles branch's environment — its env files, transformed compose
// document, volume data, and optionally its committed code — into a package
// directory under outputDir, rolling it into a single .tar.gz when
// compressed is true.
func (m *Manager) Export(branch, outputDir string, includeCode, compressed bool) model.Result {
	worktreePath := pathutil.WorktreePath(m.project.Root, m.project.WorktreeDir, branch)
	if _, err := os.Stat(worktreePath); err != nil {
		return model.Err("not_found", fmt.Sprintf("worktree for branch %q does not exist", branch))
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return model.Err("general_error", fmt.Sprintf("creating output directory: %s", err))
	}

	packageName := fmt.Sprintf("%s_%s.dockertree-package", branch, time.Now().Format("20060102-150405"))
	packageDir := filepath.Join(outputDir, packageName)
	if err := os.MkdirAll(packageDir, 0o755); err != nil {
		return model.Err("general_error", fmt.Sprintf("creating package directory: %s", err))
	}

	if err := copyEnvironmentFiles(worktreePath, packageDir); err != nil {
		return model.Err("general_error", fmt.Sprintf("copying environment files: %s", err))
	}

	volumesDir := filepath.Join(packageDir, "volumes")
	if err := os.MkdirAll(volumesDir, 0o755); err != nil {
		return model.Err("general_error", err.Error())
	}
	backupPath := filepath.Join(volumesDir, fmt.Sprintf("backup_%s.tar", branch))

	backupCtx, cancel := withBackupTimeout()
	volumes := perBranchVolumes(m.project.Name, branch)
	err := m.vol.Backup(backupCtx, branch, volumes, backupPath)
	cancel()
	if err != nil {
		return model.Err("general_error", fmt.Sprintf("backing up volumes: %s", err))
	}

	if includeCode {
		codeDir := filepath.Join(packageDir, "code")
		if err := os.MkdirAll(codeDir, 0o755); err != nil {
			return model.Err("general_error", err.Error())
		}
		codePath := filepath.Join(codeDir, branch+".tar.gz")
		if err := m.git.ArchiveHead(m.project.Root, branch, codePath); err != nil {
			return model.Err("general_error", fmt.Sprintf("creating code archive: %s", err))
		}
	}

	metadata, err := GenerateMetadata(packageDir, branch, m.project.Name, includeCode)
	if err != nil {
		return model.Err("general_error", fmt.Sprintf("generating metadata: %s", err))
	}

	finalPath := packageDir
	if compressed {
		finalPath = filepath.Join(outputDir, packageName+".tar.gz")
		if err := CompressPackage(packageDir, finalPath); err != nil {
			return model.Err("general_error", fmt.Sprintf("compressing package: %s", err))
		}
		if err := os.RemoveAll(packageDir); err != nil {
			return model.Err("general_error", fmt.Sprintf("cleaning up staged package: %s", err))
		}
	}

	return model.Ok(map[string]interface{}{
		"package_path": finalPath,
		"metadata":     metadata,
	})
}

// copyEnvironmentFiles copies a worktree's .env, .dockertree/, and
// transformed compose document into packageDir/environment.
func copyEnvironmentFiles(worktreePath, packageDir string) error {
	envDir := filepath.Join(packageDir, "environment")
	if err := os.MkdirAll(envDir, 0o755); err != nil {
		return err
	}

	envFile := pathutil.EnvFilePath(worktreePath)
	if _, err := os.Stat(envFile); err == nil {
		if err := copyFile(envFile, filepath.Join(envDir, ".env"), 0o644); err != nil {
			return err
		}
	}

	dockertreeDir := filepath.Join(worktreePath, dockertreeDirName)
	if _, err := os.Stat(dockertreeDir); err == nil {
		if err := copyTree(dockertreeDir, filepath.Join(envDir, dockertreeDirName)); err != nil {
			return err
		}
	}

	composeFile := filepath.Join(worktreePath, dockertreeDirName, "docker-compose.yml")
	if _, err := os.Stat(composeFile); err == nil {
		if err := copyFile(composeFile, filepath.Join(envDir, "docker-compose.yml"), 0o644); err != nil {
			return err
		}
	}

	return nil
}

// perBranchVolumes builds the volume-type -> volume-name map for branch,
// mirroring orchestrator.WorktreeOrchestrator.perWorktreeVolumes without
// depending on that package's unexported helper.
func perBranchVolumes(projectName, branch string) map[string]string {
	volumes := make(map[string]string, len(model.KnownVolumeTypes))
	for _, t := range model.KnownVolumeTypes {
		volumes[string(t)] = config.VolumeName(projectName, branch, t)
	}
	return volumes
}

const dockertreeDirName = ".dockertree"

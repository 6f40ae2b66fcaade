package pkgarchive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/google/uuid"

	"github.com/catalpainternational/dockertree/internal/config"
	"github.com/catalpainternational/dockertree/internal/environment"
	"github.com/catalpainternational/dockertree/internal/model"
	"github.com/catalpainternational/dockertree/internal/orchestrator"
	"github.com/catalpainternational/dockertree/internal/pathutil"
	"github.com/catalpainternational/dockertree/internal/volume"
)

// ImportOptions configures a package import.
type ImportOptions struct {
	TargetBranch   string
	RestoreData    bool
	Standalone     bool
	StandaloneAuto bool
	TargetDir      string
	Domain         string
	IP             string
	Debug          bool
	NonInteractive bool
}

// Import extracts packagePath, verifies its checksums, and reconstitutes
// the worktree it describes, either inside the current project or (in
// standalone mode) by scaffolding a fresh project directory first.
func (m *Manager) Import(packagePath string, opts ImportOptions) model.Result {
	tempDir, err := os.MkdirTemp("", "dockertree-import-*")
	if err != nil {
		return model.Err("general_error", fmt.Sprintf("creating temp directory: %s", err))
	}
	defer os.RemoveAll(tempDir)

	if err := ExtractPackage(packagePath, tempDir); err != nil {
		return model.Err("general_error", fmt.Sprintf("extracting package: %s", err))
	}

	packageDir, err := FindPackageDir(tempDir)
	if err != nil {
		return model.Err("invalid_package", err.Error())
	}

	metadataPath := filepath.Join(packageDir, metadataFileName)
	md, err := ReadMetadata(metadataPath)
	if err != nil {
		return model.Err("invalid_package", fmt.Sprintf("reading metadata: %s", err))
	}

	if ok, reason := VerifyChecksums(packageDir, md); !ok {
		return model.Err("checksum_mismatch", reason)
	}

	branch := opts.TargetBranch
	if branch == "" {
		branch = md.BranchName
	}
	if err := model.ValidateBranchName(branch); err != nil {
		return model.Err("invalid_branch_name", err.Error())
	}

	mgr := m
	standalone := opts.Standalone
	if opts.StandaloneAuto {
		standalone = !insideProject(m.project.Root)
	}

	if standalone {
		targetDir := opts.TargetDir
		if targetDir == "" {
			// A bare branch name would collide across repeated standalone
			// imports of the same package; suffix with a short random id.
			targetDir = filepath.Join(os.TempDir(), "dockertree-projects", branch+"-"+uuid.NewString()[:8])
		}
		project, err := scaffoldStandaloneProject(targetDir)
		if err != nil {
			return model.Err("general_error", fmt.Sprintf("scaffolding standalone project: %s", err))
		}
		newOrch := orchestrator.New(project, mgr.client, nil)
		mgr = NewManager(project, mgr.client, newOrch, volume.NewManager(mgr.client))
	}

	worktreePath := pathutil.WorktreePath(mgr.project.Root, mgr.project.WorktreeDir, branch)
	hasExistingData := dirExists(worktreePath) && anyVolumeHasData(mgr, branch)
	if hasExistingData {
		if opts.NonInteractive || !opts.RestoreData {
			return model.Err("confirmation_required", fmt.Sprintf("worktree %q already has volume data; rerun interactively to confirm overwrite", branch))
		}
		overwrite := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Branch %q already has existing volume data. Overwrite?", branch),
			Default: false,
		}
		if err := survey.AskOne(prompt, &overwrite); err != nil {
			return model.Err("general_error", fmt.Sprintf("reading confirmation: %s", err))
		}
		if !overwrite {
			return model.Err("aborted", "import aborted: user declined to overwrite existing data")
		}
	}

	createResult := mgr.orch.Create(branch)
	if !createResult.Success {
		return createResult
	}

	if err := restoreEnvironmentFiles(packageDir, worktreePath); err != nil {
		return model.Err("general_error", fmt.Sprintf("restoring environment files: %s", err))
	}

	if opts.RestoreData {
		restoreCtx, cancel := withBackupTimeout()
		volumes := perBranchVolumes(mgr.project.Name, branch)
		outcome, err := mgr.vol.Restore(restoreCtx, branch, volumes, packagePath)
		cancel()
		if err != nil {
			return model.Err("general_error", fmt.Sprintf("restoring volumes: %s", err))
		}
		if !outcome.OK() {
			return model.Err("general_error", fmt.Sprintf("restoring volumes: failed to restore %v (skipped %v, restored %v)", outcome.Failed, outcome.Skipped, outcome.Restored))
		}
	}

	codeArchive := filepath.Join(packageDir, "code", branch+".tar.gz")
	if _, err := os.Stat(codeArchive); err == nil {
		if err := extractTarGz(codeArchive, worktreePath); err != nil {
			return model.Err("general_error", fmt.Sprintf("extracting code archive: %s", err))
		}
	}

	if standalone {
		if err := rewriteProjectRootPaths(worktreePath, mgr.project.Root); err != nil {
			return model.Err("general_error", fmt.Sprintf("rewriting project root references: %s", err))
		}
	}

	if opts.Domain != "" {
		if err := environment.ApplyDomainOverrides(worktreePath, opts.Domain, opts.Debug); err != nil {
			return model.Err("general_error", fmt.Sprintf("applying domain overrides: %s", err))
		}
	}
	if opts.IP != "" {
		if err := environment.ApplyIPOverrides(worktreePath, opts.IP, opts.Debug); err != nil {
			return model.Err("general_error", fmt.Sprintf("applying IP overrides: %s", err))
		}
	}

	return model.Ok(map[string]interface{}{
		"branch":        branch,
		"worktree_path": worktreePath,
		"project_root":  mgr.project.Root,
		"standalone":    standalone,
		"metadata":      md,
	})
}

// insideProject reports whether dir is, or is nested inside, a directory
// containing a .dockertree/config.yml project file.
func insideProject(dir string) bool {
	for {
		if _, err := os.Stat(filepath.Join(dir, config.ConfigRelPath)); err == nil {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}

// scaffoldStandaloneProject creates a fresh project rooted at targetDir and
// persists its config, the minimal project-setup pathway standalone import
// needs before a worktree can be created inside it.
func scaffoldStandaloneProject(targetDir string) (*model.Project, error) {
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return nil, err
	}
	project, err := config.Load(targetDir)
	if err != nil {
		return nil, err
	}
	if err := config.Save(project); err != nil {
		return nil, err
	}
	return project, nil
}

// anyVolumeHasData reports whether any of branch's per-worktree volumes
// already exist, used to decide whether an import needs overwrite
// confirmation.
func anyVolumeHasData(m *Manager, branch string) bool {
	ctx, cancel := withBackupTimeout()
	defer cancel()
	volumes := perBranchVolumes(m.project.Name, branch)
	for _, name := range volumes {
		if exists, err := m.vol.Exists(ctx, name); err == nil && exists {
			return true
		}
	}
	return false
}

// restoreEnvironmentFiles copies a package's staged environment/ directory
// back onto worktreePath: .env, .dockertree/, and the transformed compose
// file.
func restoreEnvironmentFiles(packageDir, worktreePath string) error {
	envDir := filepath.Join(packageDir, "environment")
	if _, err := os.Stat(envDir); err != nil {
		return nil
	}

	envFile := filepath.Join(envDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := copyFile(envFile, pathutil.EnvFilePath(worktreePath), 0o644); err != nil {
			return err
		}
	}

	stagedDockertree := filepath.Join(envDir, dockertreeDirName)
	if _, err := os.Stat(stagedDockertree); err == nil {
		if err := copyTree(stagedDockertree, filepath.Join(worktreePath, dockertreeDirName)); err != nil {
			return err
		}
	}

	composeFile := filepath.Join(envDir, "docker-compose.yml")
	if _, err := os.Stat(composeFile); err == nil {
		if err := copyFile(composeFile, filepath.Join(worktreePath, dockertreeDirName, "docker-compose.yml"), 0o644); err != nil {
			return err
		}
	}

	return nil
}

// rewriteProjectRootPaths rewrites PROJECT_ROOT references in the restored
// env file, and ${PROJECT_ROOT} occurrences in the compose file's build
// contexts and code volume mounts, to the freshly scaffolded project's root.
func rewriteProjectRootPaths(worktreePath, newRoot string) error {
	envFile := pathutil.EnvFilePath(worktreePath)
	if err := rewriteFileVar(envFile, "PROJECT_ROOT", newRoot); err != nil && !os.IsNotExist(err) {
		return err
	}

	composeFile := filepath.Join(worktreePath, dockertreeDirName, "docker-compose.yml")
	if err := rewritePlaceholder(composeFile, "${PROJECT_ROOT}", newRoot); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// rewriteFileVar sets key=value in the env file at path, preserving every
// other entry.
func rewriteFileVar(path, key, value string) error {
	vars, err := pathutil.LoadEnvFile(path)
	if err != nil {
		return err
	}
	vars[key] = value
	return pathutil.WriteEnvFile(path, vars)
}

// rewritePlaceholder replaces every occurrence of old with new in the file
// at path.
func rewritePlaceholder(path, old, replacement string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	rewritten := strings.ReplaceAll(string(data), old, replacement)
	return os.WriteFile(path, []byte(rewritten), 0o644)
}

package volume

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/catalpainternational/dockertree/internal/model"
	"github.com/catalpainternational/dockertree/internal/runtime"
)

// minMeaningfulVolumeBytes is the size threshold (from the source system's
// heuristic) below which a non-Postgres volume is treated as holding only
// initialization scaffolding rather than real data.
const minMeaningfulVolumeBytes = 10 * 1024

// containerRestartTimeout bounds the background restart Backup schedules
// once its snapshot is written.
const containerRestartTimeout = 60 * time.Second

// Backup archives every named volume in volumes (keyed by volume type, e.g.
// "postgres_data") into a single gzip'd tar file at destPath.
//
// Any running container belonging to branch is stopped first (clone/backup
// only ever operate on volumes not attached to a running container) and
// restarted in a bounded background task once the archive has been written,
// so the snapshot captures a quiesced volume without blocking the caller on
// the restart.
//
// Each volume is first tar'd individually inside a throwaway Alpine
// container into a staging directory (so the archive captures the volume's
// contents exactly as `tar -C /data .` would see them), then the staging
// directory itself is combined into destPath using the standard library's
// archive/tar and compress/gzip — mirroring the source system's two-stage
// "per-volume tar, then combine" backup shape.
func (m *Manager) Backup(ctx context.Context, branch string, volumes map[string]string, destPath string) error {
	stopped, err := m.stopBranchContainers(ctx, branch)
	if err != nil {
		return err
	}
	defer m.restartContainersAsync(stopped)

	stagingDir, err := os.MkdirTemp("", "dockertree-backup-*")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	for volumeType, volumeName := range volumes {
		exists, err := m.Exists(ctx, volumeName)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}

		archiveName := volumeName + ".tar.gz"
		args := []string{
			"run", "--rm",
			"-v", volumeName + ":/data:ro",
			"-v", stagingDir + ":/backup",
			helperImage, "tar", "czf", "/backup/" + archiveName, "-C", "/data", ".",
		}
		if _, err := runDocker(ctx, args...); err != nil {
			return fmt.Errorf("backing up volume %s (%s): %w", volumeName, volumeType, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("creating backup destination directory: %w", err)
	}
	return tarGzDirectory(stagingDir, destPath)
}

// stopBranchContainers stops every running container belonging to branch and
// returns their IDs, so the caller can restart them once the operation that
// required them stopped completes. An empty branch stops nothing.
func (m *Manager) stopBranchContainers(ctx context.Context, branch string) ([]string, error) {
	if branch == "" {
		return nil, nil
	}

	containers, err := runtime.ListManagedContainers(ctx, m.client)
	if err != nil {
		return nil, err
	}

	var stopped []string
	for _, c := range runtime.GroupContainersByBranch(containers)[branch] {
		if c.Status != "running" {
			continue
		}
		if err := runtime.StopContainer(ctx, m.client, c.ContainerID); err != nil {
			return stopped, err
		}
		stopped = append(stopped, c.ContainerID)
	}
	return stopped, nil
}

// restartContainersAsync schedules a restart of every container ID
// previously stopped by stopBranchContainers on its own background timeout,
// independent of ctx's lifetime. Best-effort: a restart failure here does
// not surface to the caller, matching the "attempt the same restart" retry
// guarantee described for backup even when the backup itself failed.
func (m *Manager) restartContainersAsync(containerIDs []string) {
	if len(containerIDs) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), containerRestartTimeout)
		defer cancel()
		for _, id := range containerIDs {
			_ = runtime.StartContainer(ctx, m.client, id)
		}
	}()
}

// RestoreOutcome summarizes what Restore did with each matched volume.
type RestoreOutcome struct {
	Restored []string
	Skipped  []string
	Failed   []string
}

// OK reports whether every matched volume was either restored or
// deliberately skipped — false if any volume failed outright.
func (o RestoreOutcome) OK() bool {
	return len(o.Failed) == 0
}

// Restore extracts a backup created by Backup (either the backup file itself
// or a compressed package that carries it under volumes/) and restores each
// contained per-volume archive into its corresponding named volume, skipping any
// volume that already holds real data and is currently attached to a
// running container rather than destroying it (the in-use guarantee
// clone/backup/restore all share).
//
// A target volume is replaced (created if absent, cleared, then extracted
// into) whenever it is missing, holds only initialization scaffolding (an
// uninitialized Postgres data directory, or any other volume under the
// minimum meaningful size), or holds real data but nothing is currently
// using it. It is skipped only when it holds real data AND a container has
// it mounted.
func (m *Manager) Restore(ctx context.Context, branch string, volumes map[string]string, srcPath string) (RestoreOutcome, error) {
	var outcome RestoreOutcome

	stagingDir, err := os.MkdirTemp("", "dockertree-restore-*")
	if err != nil {
		return outcome, fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(stagingDir)

	if err := untarGz(srcPath, stagingDir); err != nil {
		return outcome, fmt.Errorf("extracting backup: %w", err)
	}

	// A package archive carries the backup one level down, at
	// <name>.dockertree-package/volumes/backup_<branch>.tar.
	nested, _ := filepath.Glob(filepath.Join(stagingDir, "*", "volumes", "backup_*.tar"))
	for _, p := range nested {
		if err := untarGz(p, stagingDir); err != nil {
			return outcome, fmt.Errorf("extracting nested backup %s: %w", filepath.Base(p), err)
		}
	}

	for volumeType, volumeName := range volumes {
		archiveName := volumeName + ".tar.gz"
		archivePath := filepath.Join(stagingDir, archiveName)
		if _, err := os.Stat(archivePath); err != nil {
			continue
		}

		skip, err := m.shouldSkipRestore(ctx, volumeType, volumeName)
		if err != nil {
			outcome.Failed = append(outcome.Failed, volumeName)
			continue
		}
		if skip {
			outcome.Skipped = append(outcome.Skipped, volumeName)
			continue
		}

		if err := m.replaceVolumeFromArchive(ctx, volumeName, stagingDir, archiveName); err != nil {
			outcome.Failed = append(outcome.Failed, volumeName)
			continue
		}
		outcome.Restored = append(outcome.Restored, volumeName)
	}

	return outcome, nil
}

// shouldSkipRestore decides, for one target volume, whether Restore must
// leave it untouched: true only when it holds real data and a container
// currently has it mounted.
func (m *Manager) shouldSkipRestore(ctx context.Context, volumeType, volumeName string) (bool, error) {
	exists, err := m.Exists(ctx, volumeName)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	empty, err := m.isEffectivelyEmpty(ctx, volumeType, volumeName)
	if err != nil {
		return false, err
	}
	if empty {
		return false, nil
	}

	users, err := runtime.ContainersUsingVolume(ctx, m.client, volumeName)
	if err != nil {
		return false, err
	}
	for _, c := range users {
		if c.Status == "running" {
			return true, nil
		}
	}
	return false, nil
}

// isEffectivelyEmpty reports whether volumeName holds only initialization
// scaffolding rather than real data: for postgres_data, IsPostgresEmpty's
// PG_VERSION/base/ heuristic; for everything else, total size below
// minMeaningfulVolumeBytes.
func (m *Manager) isEffectivelyEmpty(ctx context.Context, volumeType, volumeName string) (bool, error) {
	if volumeType == string(model.VolumePostgresData) {
		return m.IsPostgresEmpty(ctx, volumeName)
	}

	size, err := m.SizeBytes(ctx, volumeName)
	if err != nil {
		return false, err
	}
	return size < minMeaningfulVolumeBytes, nil
}

// replaceVolumeFromArchive ensures volumeName exists, clears whatever it
// currently holds, and extracts the archive staged at
// stagingDir/archiveName into it.
func (m *Manager) replaceVolumeFromArchive(ctx context.Context, volumeName, stagingDir, archiveName string) error {
	if err := m.Create(ctx, volumeName); err != nil {
		return fmt.Errorf("ensuring volume %s exists: %w", volumeName, err)
	}
	if err := m.clearVolume(ctx, volumeName); err != nil {
		return err
	}

	script := fmt.Sprintf("tar xzf /backup/%s -C /data", archiveName)
	args := []string{
		"run", "--rm",
		"-v", volumeName + ":/data",
		"-v", stagingDir + ":/backup:ro",
		helperImage, "sh", "-c", script,
	}
	if _, err := runDocker(ctx, args...); err != nil {
		return fmt.Errorf("extracting archive into volume %s: %w", volumeName, err)
	}
	return nil
}

// tarGzDirectory writes every regular file under srcDir into a gzip'd tar
// archive at destPath, using paths relative to srcDir as archive entry names.
func tarGzDirectory(srcDir, destPath string) error {
	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", destPath, err)
	}
	defer out.Close()

	gzw := gzip.NewWriter(out)
	defer gzw.Close()
	tw := tar.NewWriter(gzw)
	defer tw.Close()

	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = rel

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		_, err = io.Copy(tw, f)
		return err
	})
}

// untarGz extracts a gzip'd tar archive at srcPath into destDir.
func untarGz(srcPath, destDir string) error {
	f, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", srcPath, err)
	}
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("opening gzip stream: %w", err)
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		target := filepath.Join(destDir, filepath.Clean(hdr.Name))
		if !withinDir(destDir, target) {
			return fmt.Errorf("archive entry %q escapes destination directory", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			out.Close()
		}
	}
}

// withinDir reports whether target is contained within dir, guarding
// untarGz against path traversal via a malicious archive entry name.
func withinDir(dir, target string) bool {
	rel, err := filepath.Rel(dir, target)
	if err != nil {
		return false
	}
	return rel != ".." && !filepathHasDotDotPrefix(rel)
}

func filepathHasDotDotPrefix(rel string) bool {
	return len(rel) >= 2 && rel[0] == '.' && rel[1] == '.' &&
		(len(rel) == 2 || os.IsPathSeparator(rel[2]))
}

package serverimport

import (
	"context"
	"time"

	"github.com/catalpainternational/dockertree/internal/config"
	"github.com/catalpainternational/dockertree/internal/model"
)

// minVolumeSizeBytes is the non-postgres minimum size below which a volume
// is treated as empty and worth restoring again.
const minVolumeSizeBytes = 10 * 1024

// volumeVerifyTimeout bounds the helper-container inspections volume
// verification runs per volume.
const volumeVerifyTimeout = 30 * time.Second

// volumeVerification summarizes the state of a branch's per-worktree
// volumes after an import.
type volumeVerification struct {
	Found       int
	Missing     int
	Empty       int
	NeedRestore bool
}

func perBranchVolumeNames(projectName, branch string) map[string]string {
	volumes := make(map[string]string, len(model.KnownVolumeTypes))
	for _, t := range model.KnownVolumeTypes {
		volumes[string(t)] = config.VolumeName(projectName, branch, t)
	}
	return volumes
}

// verifyVolumes inspects every per-worktree volume for branch, flagging one
// as needing restoration if it's missing entirely or present but empty
// (postgres_data: no PG_VERSION/non-empty base/; others: under the minimum
// size threshold).
func (pc *projectContext) verifyVolumes(ctx context.Context, branch string) (volumeVerification, error) {
	var result volumeVerification

	for volType, name := range perBranchVolumeNames(pc.project.Name, branch) {
		exists, err := pc.vol.Exists(ctx, name)
		if err != nil {
			return result, err
		}
		if !exists {
			result.Missing++
			result.NeedRestore = true
			continue
		}

		inspectCtx, cancel := context.WithTimeout(ctx, volumeVerifyTimeout)
		empty, err := pc.volumeIsEmpty(inspectCtx, name, model.VolumeType(volType))
		cancel()
		if err != nil {
			// Inspection failing (helper image unavailable, daemon busy) is
			// not itself proof of emptiness; count the volume as found.
			result.Found++
			continue
		}
		if empty {
			result.Empty++
			result.NeedRestore = true
			continue
		}
		result.Found++
	}

	return result, nil
}

func (pc *projectContext) volumeIsEmpty(ctx context.Context, name string, volType model.VolumeType) (bool, error) {
	if volType == model.VolumePostgresData {
		return pc.vol.IsPostgresEmpty(ctx, name)
	}
	size, err := pc.vol.SizeBytes(ctx, name)
	if err != nil {
		return false, err
	}
	return size < minVolumeSizeBytes, nil
}

// restoreVolumesIfNeeded re-runs the package's volume restore step when
// verification finds anything missing or empty.
func (pc *projectContext) restoreVolumesIfNeeded(ctx context.Context, packagePath, branch string) error {
	verification, err := pc.verifyVolumes(ctx, branch)
	if err != nil {
		return err
	}
	if !verification.NeedRestore {
		return nil
	}

	restoreCtx, cancel := context.WithTimeout(ctx, 600*time.Second)
	defer cancel()
	volumes := perBranchVolumeNames(pc.project.Name, branch)
	outcome, err := pc.vol.Restore(restoreCtx, branch, volumes, packagePath)
	if err != nil {
		return err
	}
	if !outcome.OK() {
		return model.NewCLIError(model.ExitGeneralError, "restore left some volumes unrestored")
	}
	return nil
}

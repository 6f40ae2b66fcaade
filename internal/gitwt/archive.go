package gitwt

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
)

// ArchiveHead writes a gzip-compressed tar of branch's current tree to
// output, using `git archive` so untracked and ignored files are excluded —
// only what's actually committed to the branch is captured.
func (m *Manager) ArchiveHead(repoPath, branch, output string) error {
	out, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", output, err)
	}
	defer out.Close()

	cmd := exec.Command("git", "-C", repoPath, "archive", "--format=tar.gz", branch)
	cmd.Stdout = out

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("git archive %s failed: %s: %w", branch, stderr.String(), err)
	}

	return nil
}

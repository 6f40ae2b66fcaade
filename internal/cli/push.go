// Package cli — push.go implements the "dockertree push" command: exporting
// a branch's package and shipping it to a remote host over scp, for that
// host's server-import orchestrator to pick up.
package cli

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/catalpainternational/dockertree/internal/environment"
	"github.com/catalpainternational/dockertree/internal/model"
	"github.com/catalpainternational/dockertree/internal/pathutil"
)

type pushFlags struct {
	outputDir   string
	keepPackage bool
	includeCode bool
	domain      string
	ip          string
}

func NewPushCommand() *cobra.Command {
	flags := &pushFlags{outputDir: "./packages"}
	cmd := &cobra.Command{
		Use:   "push [branch] <scp-target>",
		Short: "Export a branch and scp it to a remote host",
		Long: `Export the given branch's environment into a .dockertree-package and
copy it to scp-target (user@host:path). If branch is omitted, the branch
checked out in the current directory is used.

The scp target, and domain/ip if given, are recorded in the worktree's
env.dockertree file. push does not read them back: the scp target is
required on every call.

Examples:
  dockertree push deploy@203.0.113.5:/srv/packages
  dockertree push feature-auth deploy@203.0.113.5:/srv/packages --domain feature.example.com`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			branch, target := "", args[0]
			if len(args) == 2 {
				branch, target = args[0], args[1]
			}
			return runPush(branch, target, flags)
		},
	}
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "./packages", "Directory to stage the package in before scp")
	cmd.Flags().BoolVar(&flags.keepPackage, "keep-package", false, "Keep the local package after a successful push")
	cmd.Flags().BoolVar(&flags.includeCode, "include-code", false, "Include a git archive of the branch's committed code")
	cmd.Flags().StringVar(&flags.domain, "domain", "", "Domain to record for the remote deployment")
	cmd.Flags().StringVar(&flags.ip, "ip", "", "IP address to record for the remote deployment")
	return cmd
}

func runPush(branch, scpTarget string, flags *pushFlags) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	if branch == "" {
		branch, err = a.git.GetCurrentBranch(a.project.Root)
		if err != nil {
			return model.WrapCLIError(model.ExitGitError, "no branch given and none detected for the current directory", err)
		}
	}

	exportResult := a.pkg.Export(branch, flags.outputDir, flags.includeCode, true)
	if !exportResult.Success {
		return resultToErr(exportResult)
	}
	data, _ := exportResult.Data.(map[string]interface{})
	packagePath, _ := data["package_path"].(string)
	if packagePath == "" {
		return model.NewCLIError(model.ExitGeneralError, "export did not report a package path")
	}

	if err := scpPush(packagePath, scpTarget); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "scp transfer failed", err)
	}

	worktreePath := pathutil.WorktreePath(a.project.Root, a.project.WorktreeDir, branch)
	deployment := environment.Deployment{SCPTarget: scpTarget, Domain: flags.domain, IP: flags.ip}
	if err := environment.SaveDeployment(worktreePath, deployment); err != nil {
		VerboseLog("warning: failed to save push configuration: %v", err)
	}

	if !flags.keepPackage {
		_ = os.RemoveAll(packagePath)
	}

	printResult(model.OkWithMessage(map[string]interface{}{
		"branch":       branch,
		"scp_target":   scpTarget,
		"package_path": packagePath,
		"kept":         flags.keepPackage,
	}, "package pushed to "+scpTarget))
	return nil
}

// scpDestPath appends a trailing slash to scpTarget when it looks like a
// bare directory (no file extension), so scp treats it as a destination
// directory rather than trying to rename the package to the last path
// segment.
func scpDestPath(scpTarget string) string {
	if scpTarget == "" {
		return scpTarget
	}
	if filepath.Ext(scpTarget) == "" && scpTarget[len(scpTarget)-1:] != "/" {
		return scpTarget + "/"
	}
	return scpTarget
}

// scpPush shells out to the system scp binary. The target is an opaque
// user@host:path string scp itself parses; this command does not attempt
// to validate it beyond what scp's own exit status reports.
func scpPush(packagePath, scpTarget string) error {
	cmd := exec.Command("scp", packagePath, scpDestPath(scpTarget))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

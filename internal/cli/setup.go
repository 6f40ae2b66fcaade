// Package cli — setup.go builds the component graph every subcommand needs:
// project detection, a runtime client, and the orchestrator/volume/package
// managers wired to them. Each RunE calls loadApp once at the top of its
// command body, resolving the repo root before doing anything else.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/catalpainternational/dockertree/internal/config"
	"github.com/catalpainternational/dockertree/internal/gitwt"
	"github.com/catalpainternational/dockertree/internal/model"
	"github.com/catalpainternational/dockertree/internal/orchestrator"
	"github.com/catalpainternational/dockertree/internal/pathutil"
	"github.com/catalpainternational/dockertree/internal/pkgarchive"
	"github.com/catalpainternational/dockertree/internal/proxy"
	"github.com/catalpainternational/dockertree/internal/runtime"
	"github.com/catalpainternational/dockertree/internal/volume"
)

// app bundles the managers every subcommand composes its work from.
type app struct {
	project *model.Project
	client  *runtime.Client
	proxy   *proxy.Manager
	orch    *orchestrator.WorktreeOrchestrator
	vol     *volume.Manager
	pkg     *pkgarchive.Manager
	git     *gitwt.Manager
}

// close releases the Docker client. Deferred right after loadApp succeeds.
func (a *app) close() {
	if a.client != nil {
		_ = a.client.Close()
	}
}

// loadApp detects the project root from the current directory, connects to
// the Docker daemon, and builds every manager a subcommand might need.
func loadApp() (*app, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}

	projectRoot, err := pathutil.FindProjectRoot(cwd)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitNotSetUp, "not inside a dockertree project", err)
	}

	project, err := config.Load(projectRoot)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitNotSetUp, "failed to load project config", err)
	}

	client, err := runtime.NewClient()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitRuntimeUnavailable, "failed to connect to Docker", err)
	}

	assetsDir := filepath.Join(project.Root, ".dockertree", "proxy")
	composeFile, caddyfile, monitorScript, err := proxy.WriteAssets(assetsDir)
	if err != nil {
		_ = client.Close()
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to extract proxy assets", err)
	}
	proxyMgr := proxy.NewManager(client, project.CaddyNetwork, composeFile, caddyfile, monitorScript)

	orch := orchestrator.New(project, client, proxyMgr)
	vol := volume.NewManager(client)
	pkg := pkgarchive.NewManager(project, client, orch, vol)

	return &app{
		project: project,
		client:  client,
		proxy:   proxyMgr,
		orch:    orch,
		vol:     vol,
		pkg:     pkg,
		git:     gitwt.NewManager(),
	}, nil
}

// exitCodeForResult maps a model.Result's error kind to an ExitCode, for
// commands that receive a Result directly rather than a Go error.
func exitCodeForResult(result model.Result) model.ExitCode {
	if result.Error == nil {
		return model.ExitGeneralError
	}
	switch result.Error.Kind {
	case "not_found":
		return model.ExitNotFound
	case "already_exists":
		return model.ExitAlreadyExists
	case "reserved_name":
		return model.ExitReservedName
	case "protected_branch":
		return model.ExitProtectedBranch
	case "corrupted_worktree":
		return model.ExitCorruptedWorktree
	case "volume_in_use":
		return model.ExitVolumeInUse
	case "checksum_mismatch":
		return model.ExitChecksumMismatch
	case "permission_denied":
		return model.ExitPermissionDenied
	case "timeout":
		return model.ExitTimeout
	case "conflict":
		return model.ExitConflict
	case "runtime_unavailable", "compose_unavailable":
		return model.ExitRuntimeUnavailable
	case "no_free_port":
		return model.ExitNoFreePort
	case "invalid_branch_name", "git_error":
		return model.ExitGitError
	default:
		return model.ExitGeneralError
	}
}

// resultToErr converts a failed model.Result into a *model.CLIError a RunE
// can return; callers are expected to have already checked !result.Success.
func resultToErr(result model.Result) error {
	message := result.Message
	if result.Error != nil {
		message = result.Error.Message
	}
	return model.NewCLIError(exitCodeForResult(result), message)
}

// printResult renders a successful model.Result in the current output mode.
// JSON mode prints the whole Result verbatim; text mode prints the message
// (if any) followed by the data as indented key/value lines.
func printResult(result model.Result) {
	if IsJSONOutput() {
		printJSON(result)
		return
	}
	if result.Message != "" {
		fmt.Println(result.Message)
	}
	printDataText(result.Data, "")
}

func printJSON(v interface{}) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(data))
}

// printDataText renders an arbitrary result payload as indented
// "key: value" lines, recursing into nested maps. It makes no attempt at a
// bespoke layout per command — commands that want a specific human-readable
// shape print it themselves instead of calling this.
func printDataText(data interface{}, indent string) {
	switch v := data.(type) {
	case map[string]interface{}:
		for _, key := range sortedKeys(v) {
			value := v[key]
			switch value.(type) {
			case map[string]interface{}:
				fmt.Printf("%s%s:\n", indent, key)
				printDataText(value, indent+"  ")
			default:
				fmt.Printf("%s%s: %v\n", indent, key, value)
			}
		}
	case map[string]string:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			fmt.Printf("%s%s: %s\n", indent, key, v[key])
		}
	case nil:
	default:
		fmt.Printf("%s%v\n", indent, v)
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

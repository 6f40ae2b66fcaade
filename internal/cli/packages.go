// Package cli — packages.go implements the "dockertree packages" command
// tree for exporting, importing, listing, and validating .dockertree-package
// archives.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/catalpainternational/dockertree/internal/pkgarchive"
)

func NewPackagesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packages",
		Short: "Export, import, list, and validate worktree packages",
	}
	cmd.AddCommand(newPackagesExportCommand())
	cmd.AddCommand(newPackagesImportCommand())
	cmd.AddCommand(newPackagesListCommand())
	cmd.AddCommand(newPackagesValidateCommand())
	return cmd
}

func newPackagesExportCommand() *cobra.Command {
	var outputDir string
	var includeCode, compressed bool
	cmd := &cobra.Command{
		Use:   "export <branch>",
		Short: "Bundle a branch's environment into a .dockertree-package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			result := a.pkg.Export(args[0], outputDir, includeCode, compressed)
			if !result.Success {
				return resultToErr(result)
			}
			printResult(result)
			return nil
		},
	}
	cmd.Flags().StringVar(&outputDir, "output-dir", ".", "Directory to write the package into")
	cmd.Flags().BoolVar(&includeCode, "include-code", false, "Include a git archive of the branch's committed code")
	cmd.Flags().BoolVar(&compressed, "compressed", true, "Roll the package directory into a single .tar.gz")
	return cmd
}

func newPackagesImportCommand() *cobra.Command {
	var targetBranch, targetDir, domain, ip string
	var restoreData, standalone, debug bool
	cmd := &cobra.Command{
		Use:   "import <package-path>",
		Short: "Reconstitute a worktree environment from a .dockertree-package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			result := a.pkg.Import(args[0], pkgarchive.ImportOptions{
				TargetBranch:   targetBranch,
				RestoreData:    restoreData,
				Standalone:     standalone,
				TargetDir:      targetDir,
				Domain:         domain,
				IP:             ip,
				Debug:          debug,
				NonInteractive: true,
			})
			if !result.Success {
				return resultToErr(result)
			}
			printResult(result)
			return nil
		},
	}
	cmd.Flags().StringVar(&targetBranch, "branch", "", "Branch name to import as (defaults to the package's recorded branch)")
	cmd.Flags().StringVar(&targetDir, "target-dir", "", "Directory to scaffold a standalone project into")
	cmd.Flags().StringVar(&domain, "domain", "", "Domain to configure the imported environment for")
	cmd.Flags().StringVar(&ip, "ip", "", "IP address to configure the imported environment for")
	cmd.Flags().BoolVar(&restoreData, "restore-data", true, "Restore the package's volume data")
	cmd.Flags().BoolVar(&standalone, "standalone", false, "Scaffold a fresh standalone project instead of importing into the current one")
	cmd.Flags().BoolVar(&debug, "debug", false, "Keep intermediate extraction directories for inspection")
	return cmd
}

func newPackagesListCommand() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List .dockertree-package archives in a directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			result := a.pkg.List(dir)
			if !result.Success {
				return resultToErr(result)
			}
			printResult(result)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to scan for packages")
	return cmd
}

func newPackagesValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <package-path>",
		Short: "Verify a package's checksums without importing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.close()

			result := a.pkg.Validate(args[0])
			if !result.Success {
				return resultToErr(result)
			}
			printResult(result)
			return nil
		},
	}
}

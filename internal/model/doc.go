// Package model defines the domain types and value objects for the
// dockertree engine.
//
// This package contains pure data structures with no external dependencies.
// Branch-environment state (containers, volumes, port allocations) is not
// persisted by this package — it is reconstructed at runtime from Docker
// labels and the project's .dockertree/config.yml by the components in
// internal/config, internal/orchestrator, and internal/volume.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling,
// and the Result/ErrorInfo pair every orchestrator-level operation returns.
package model

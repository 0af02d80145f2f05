package main

import (
	"aws-tools-linux/cmd"
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing and execution.
//
// aws-tools-linux provisions the AWS CLI and AWS SAM CLI on Linux hosts:
//   - Detects the current install state by probing for the tool's executable
//     in the configured bin directory, keeping every run idempotent
//   - Downloads the vendor-provided installer archive (to a temporary
//     directory unless a staging directory is given), extracts it, and runs
//     the vendor install script with tool-specific arguments
//   - Uninstalls by removing the executable, its companion files, and the
//     vendor install directory
//   - Reports each run as a changed/message result, optionally as JSON for a
//     calling orchestration layer
//
// Error handling strategy:
//   - Leaf operations return typed errors (network, archive, process,
//     verification, filesystem) and every failure is terminal for that run;
//     the orchestrator folds it into a single failure report and a non-zero
//     exit status
//
// The two supported tools share one orchestrator; their installer quirks
// (argument conventions, script location, companion files) live in small
// per-tool descriptors, so adding another vendor-installer tool is a matter
// of adding a descriptor.
func main() {
	cmd.Execute()
}

package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"aws-tools-linux/internal/logger"
)

// debug indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag.
var debug bool

// exit is swapped out in tests.
var exit = os.Exit

// rootCmd is the base command for the `aws-tools` CLI.
var rootCmd = &cobra.Command{
	Use:   "aws-tools",
	Short: "Provision the AWS CLI and AWS SAM CLI on a Linux host",

	// PersistentPreRun runs before any subcommand and initializes the
	// logger based on the debug flag.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},
}

// Execute initializes flags, registers subcommands, and starts command
// execution. It's the entry point for the CLI when invoked by the user.
func Execute() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		exit(1)
	}
}

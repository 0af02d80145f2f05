package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"aws-tools-linux/internal/logger"
	"aws-tools-linux/internal/provision"
)

// provisionCmd groups the per-tool provisioning commands.
var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Install, update, or uninstall a single tool",
}

// newToolCmd builds the provisioning subcommand for one tool. Flag
// defaults come from the tool descriptor so `--help` shows the real
// values that will be used.
func newToolCmd(tool provision.Tool) *cobra.Command {
	var req provision.Request
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   tool.Name,
		Short: "Provision the " + tool.DisplayName + " (state: present, absent, or updated)",
		Run: func(cmd *cobra.Command, args []string) {
			result := provision.Apply(tool, req)
			report(result, jsonOut)
			if result.Failed {
				exit(1)
			}
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.State, "state", provision.StatePresent, "Desired tool state: present, absent, or updated")
	flags.StringVar(&req.DownloadURL, "download-url", tool.DefaultURL, "URL of the vendor installer archive")
	flags.StringVar(&req.DownloadDir, "download-dir", "", "Download staging directory (default: a temporary directory)")
	flags.StringVar(&req.DownloadFileName, "download-file-name", tool.DefaultFileName, "Local file name for the downloaded archive")
	flags.StringVar(&req.BinDir, "bin-dir", provision.DefaultBinDir, "Directory where the executable is expected")
	flags.StringVar(&req.InstallDir, "install-dir", tool.DefaultInstallDir, "Directory where vendor files are placed")
	flags.BoolVar(&jsonOut, "json", false, "Emit the result report as JSON on stdout")

	return cmd
}

// report prints the provisioning result, either as a JSON document for
// a calling orchestration layer or as colored log lines for a human.
func report(result provision.Result, jsonOut bool) {
	if jsonOut {
		out, err := json.Marshal(result)
		if err != nil {
			logger.Error("[ERROR] Failed to marshal result: %v\n", err)
			return
		}
		fmt.Println(string(out))
		return
	}

	switch {
	case result.Failed:
		logger.Error("[ERROR] %s\n", result.Msg)
	case result.Changed:
		logger.Info("[INFO] %s\n", result.Msg)
	default:
		logger.Info("[INFO] %s (no change)\n", result.Msg)
	}
}

// init registers the provision command tree with the root command.
func init() {
	for _, tool := range provision.Tools {
		provisionCmd.AddCommand(newToolCmd(tool))
	}
	rootCmd.AddCommand(provisionCmd)
}

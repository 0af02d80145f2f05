package cmd

import (
	"github.com/spf13/cobra"

	"aws-tools-linux/internal/config"
	"aws-tools-linux/internal/logger"
	"aws-tools-linux/internal/provision"
)

// manifestPath holds the path to the provisioning manifest YAML file.
// It's passed via the `--config` or `-c` flag.
var manifestPath string

// applyCmd brings every tool listed in a manifest to its desired
// state, in order. Entries are independent: a failed tool does not stop
// the run, it only affects the final exit status.
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Provision all tools listed in a manifest file",
	Run: func(cmd *cobra.Command, args []string) {
		manifest, err := config.LoadManifest(manifestPath)
		if err != nil {
			logger.Error("[ERROR] %v\n", err)
			exit(1)
			return
		}

		failed := false
		for _, entry := range manifest.Tools {
			tool, ok := provision.Lookup(entry.Name)
			if !ok {
				logger.Error("[ERROR] Unknown tool %q in manifest. Skipping.\n", entry.Name)
				failed = true
				continue
			}

			logger.Debug("[DEBUG] Applying state %q for %s\n", entry.State, tool.DisplayName)
			result := provision.Apply(tool, provision.Request{
				State:            entry.State,
				DownloadURL:      entry.DownloadURL,
				DownloadDir:      entry.DownloadDir,
				DownloadFileName: entry.DownloadFileName,
				BinDir:           entry.BinDir,
				InstallDir:       entry.InstallDir,
			})
			report(result, false)
			if result.Failed {
				failed = true
			}
		}

		if failed {
			exit(1)
		}
	},
}

// init sets up the apply command flags and registers it with the root.
func init() {
	applyCmd.Flags().StringVarP(&manifestPath, "config", "c", "tools.yaml", "Path to the provisioning manifest")
	rootCmd.AddCommand(applyCmd)
}

package provision

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"aws-tools-linux/internal/logger"
)

// RunInstaller marks the extracted vendor installer script executable,
// runs it to completion with the given arguments, and finally applies
// recursive 755 permissions to installDir so the installed tree is
// world-readable. The script is downloaded, unverified vendor code;
// running it is the accepted trust model of this provisioner.
func RunInstaller(script string, args []string, installDir string) error {
	if _, err := os.Stat(script); err != nil {
		return &Error{Kind: KindProcess, Err: fmt.Errorf("installer script not found at %s: %w", script, err)}
	}
	if err := os.Chmod(script, 0755); err != nil {
		return &Error{Kind: KindProcess, Err: fmt.Errorf("failed to mark installer %s executable: %w", script, err)}
	}

	cmd := exec.Command(script, args...)
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(cmd.Args, " "))
	output, err := cmd.CombinedOutput()
	if err != nil {
		return &Error{Kind: KindProcess, Err: fmt.Errorf("installer %s failed: %v\nOutput: %s", script, err, output)}
	}
	logger.Debug("[DEBUG] Installer output: %s\n", output)

	// The vendor installers leave root-owned trees behind; open them up
	// the same way the upstream install instructions do.
	chmodCmd := exec.Command("chmod", "-R", "755", installDir)
	logger.Debug("[DEBUG] Running command: %s\n", strings.Join(chmodCmd.Args, " "))
	if output, err := chmodCmd.CombinedOutput(); err != nil {
		return &Error{Kind: KindFilesystem, Err: fmt.Errorf("failed to set permissions on %s: %v\nOutput: %s", installDir, err, output)}
	}

	return nil
}

package provision

import (
	"os"
	"path/filepath"

	"aws-tools-linux/internal/logger"
)

// Probe reports whether the named executable exists in binDir.
// It is the idempotency guard for install/uninstall decisions and the
// post-install verification check. No side effects.
func Probe(binDir, name string) bool {
	path := filepath.Join(binDir, name)
	_, err := os.Stat(path)
	logger.Debug("[DEBUG] Probing %s: present=%v\n", path, err == nil)
	return err == nil
}

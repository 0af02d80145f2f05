package provision

import (
	"fmt"
	"os"

	"aws-tools-linux/internal/logger"
)

// Workspace is the directory holding the fetched installer archive for
// one provisioning run. When the user did not specify a download
// directory, a fresh temporary directory is created and removed again
// when the run finishes, successful or not.
type Workspace struct {
	Dir  string
	temp bool
}

// NewWorkspace returns a workspace rooted at userDir when it is set,
// otherwise a newly created temporary directory.
func NewWorkspace(userDir string) (*Workspace, error) {
	if userDir != "" {
		logger.Debug("[DEBUG] Using user-specified download directory %s\n", userDir)
		return &Workspace{Dir: userDir}, nil
	}

	dir, err := os.MkdirTemp("", "aws-tools-")
	if err != nil {
		return nil, &Error{Kind: KindFilesystem, Err: fmt.Errorf("failed to create temporary download directory: %w", err)}
	}
	logger.Debug("[DEBUG] Created temporary download directory %s\n", dir)
	return &Workspace{Dir: dir, temp: true}, nil
}

// Temporary reports whether the workspace owns its directory.
func (w *Workspace) Temporary() bool {
	return w.temp
}

// Cleanup removes the workspace directory if it was created as a
// temporary one. User-specified directories are left untouched.
// Intended to be deferred right after NewWorkspace succeeds.
func (w *Workspace) Cleanup() {
	if !w.temp {
		return
	}
	if err := os.RemoveAll(w.Dir); err != nil {
		logger.Warn("[WARN] Failed to remove temporary directory %s: %v\n", w.Dir, err)
		return
	}
	logger.Debug("[DEBUG] Removed temporary download directory %s\n", w.Dir)
}

package provision

import (
	"fmt"
	"os"
	"path/filepath"

	"aws-tools-linux/internal/logger"
)

// Desired tool states, matching the state option of the original
// module interface.
const (
	StatePresent = "present" // install if missing
	StateAbsent  = "absent"  // remove if installed
	StateUpdated = "updated" // install, or re-run the vendor updater
)

// Request carries the configuration for one provisioning run.
// Zero-valued fields are filled from the tool descriptor's defaults.
type Request struct {
	State            string
	DownloadURL      string
	DownloadDir      string
	DownloadFileName string
	BinDir           string
	InstallDir       string
}

// Result is the sole output of a provisioning run. Changed is true if
// and only if a filesystem-mutating action was attempted; detecting
// that nothing needed doing leaves it false.
type Result struct {
	Changed bool   `json:"changed"`
	Msg     string `json:"msg,omitempty"`
	Failed  bool   `json:"failed,omitempty"`
}

// Apply runs the requested lifecycle action for the tool and reports
// the outcome. Every failure is terminal for the invocation; there are
// no retries.
func Apply(tool Tool, req Request) Result {
	req = withDefaults(tool, req)

	switch req.State {
	case StatePresent:
		return installOrUpdate(tool, req, false)
	case StateUpdated:
		return installOrUpdate(tool, req, true)
	case StateAbsent:
		return uninstall(tool, req)
	default:
		return failure(Result{}, fmt.Errorf("unsupported state %q: must be one of present, absent, updated", req.State))
	}
}

// withDefaults fills unset request fields from the tool descriptor.
func withDefaults(tool Tool, req Request) Request {
	if req.State == "" {
		req.State = StatePresent
	}
	if req.DownloadURL == "" {
		req.DownloadURL = tool.DefaultURL
	}
	if req.DownloadFileName == "" {
		req.DownloadFileName = tool.DefaultFileName
	}
	if req.BinDir == "" {
		req.BinDir = DefaultBinDir
	}
	if req.InstallDir == "" {
		req.InstallDir = tool.DefaultInstallDir
	}
	return req
}

// installOrUpdate downloads the vendor installer archive, extracts it,
// and runs the installer. An install on an already-present tool is a
// no-op; an update always re-runs the vendor installer's own update
// logic. Both paths verify afterwards that the executable actually
// landed in the bin directory.
func installOrUpdate(tool Tool, req Request, update bool) Result {
	if Probe(req.BinDir, tool.Executable) && !update {
		return Result{Msg: tool.DisplayName + " already exists"}
	}

	result := Result{Changed: true}

	ws, err := NewWorkspace(req.DownloadDir)
	if err != nil {
		return failure(result, err)
	}
	defer ws.Cleanup()

	archive, err := Download(req.DownloadURL, ws.Dir, req.DownloadFileName)
	if err != nil {
		return failure(result, err)
	}

	extracted, err := Extract(archive)
	if err != nil {
		return failure(result, err)
	}

	script := filepath.Join(extracted, tool.InstallerPath)
	args := tool.InstallerArgs(req.BinDir, req.InstallDir, update)
	if err := RunInstaller(script, args, req.InstallDir); err != nil {
		return failure(result, err)
	}

	if !Probe(req.BinDir, tool.Executable) {
		verr := &Error{Kind: KindVerification, Err: fmt.Errorf("%s did not install successfully", tool.DisplayName)}
		return failure(result, verr)
	}

	if update {
		result.Msg = tool.DisplayName + " updated successfully"
	} else {
		result.Msg = tool.DisplayName + " installed successfully"
	}
	return result
}

// uninstall removes the executable, its companion files, and the
// install directory. Each removal is guarded by an existence check so
// a second run reports no change rather than an error.
func uninstall(tool Tool, req Request) Result {
	if !Probe(req.BinDir, tool.Executable) {
		return Result{Msg: tool.DisplayName + " is not installed"}
	}

	result := Result{Changed: true}

	targets := append([]string{tool.Executable}, tool.Companions...)
	for _, name := range targets {
		if err := removeFile(filepath.Join(req.BinDir, name)); err != nil {
			return failure(result, err)
		}
	}
	if err := removeTree(req.InstallDir); err != nil {
		return failure(result, err)
	}

	result.Msg = tool.DisplayName + " uninstalled successfully"
	return result
}

// removeFile deletes the file at path if it exists. A path that is
// already gone is not an error.
func removeFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	logger.Debug("[DEBUG] Removing file %s\n", path)
	if err := os.Remove(path); err != nil {
		return &Error{Kind: KindFilesystem, Err: fmt.Errorf("failed to remove %s: %w", path, err)}
	}
	return nil
}

// removeTree deletes the directory at path recursively if it exists.
func removeTree(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	logger.Debug("[DEBUG] Removing directory %s\n", path)
	if err := os.RemoveAll(path); err != nil {
		return &Error{Kind: KindFilesystem, Err: fmt.Errorf("failed to remove %s: %w", path, err)}
	}
	return nil
}

// failure folds an error into the standard failure report. The changed
// flag is preserved: a failure after mutation began still reports
// changed=true.
func failure(result Result, err error) Result {
	result.Failed = true
	result.Msg = "An error occurred: " + err.Error()
	logger.Debug("[DEBUG] Provisioning failed (%s): %v\n", KindOf(err), err)
	return result
}

package provision

import (
	"archive/zip"
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// installerArchive builds a zip archive holding a single installer
// script at scriptPath, mirroring the layout of the vendor packages.
func installerArchive(t *testing.T, scriptPath, script string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	hdr := &zip.FileHeader{Name: scriptPath, Method: zip.Deflate}
	hdr.SetMode(0755)
	f, err := w.CreateHeader(hdr)
	require.NoError(t, err)
	_, err = f.Write([]byte(script))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// archiveServer serves the given bytes for every request and counts
// how many requests it saw.
func archiveServer(t *testing.T, body []byte) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

// samInstallerScript fakes the SAM CLI installer, which receives no
// directory arguments and places files on its own. Received arguments
// are recorded for assertions.
func samInstallerScript(binDir, installDir string) string {
	return fmt.Sprintf("#!/bin/sh\nmkdir -p \"%s\" \"%s\"\ntouch \"%s\"\necho \"$@\" > \"%s\"\n",
		binDir, installDir, filepath.Join(binDir, "sam"), filepath.Join(installDir, "args"))
}

// awsInstallerScript fakes the AWS CLI bundled installer, which takes
// --bin-dir/--install-dir (and optionally --update) on its command line.
const awsInstallerScript = `#!/bin/sh
bindir=""
installdir=""
update=0
while [ $# -gt 0 ]; do
  case "$1" in
    --bin-dir) bindir="$2"; shift 2 ;;
    --install-dir) installdir="$2"; shift 2 ;;
    --update) update=1; shift ;;
    *) shift ;;
  esac
done
mkdir -p "$bindir" "$installdir"
touch "$bindir/aws" "$bindir/aws_completer"
echo "update=$update" > "$installdir/receipt"
`

// tempRoot points the default temporary directory at a fresh location
// so tests can assert that no workspace directories leak.
func tempRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("TMPDIR", root)
	return root
}

func assertNoLeakedWorkspace(t *testing.T, root string) {
	t.Helper()
	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary download workspaces must be cleaned up")
}

func TestApplyInstallSAM(t *testing.T) {
	tmp := tempRoot(t)
	binDir := filepath.Join(t.TempDir(), "bin")
	installDir := filepath.Join(t.TempDir(), "aws-sam-cli")

	archive := installerArchive(t, "install", samInstallerScript(binDir, installDir))
	server, hits := archiveServer(t, archive)

	result := Apply(SAMCLI, Request{
		State:       StatePresent,
		DownloadURL: server.URL,
		BinDir:      binDir,
		InstallDir:  installDir,
	})

	assert.False(t, result.Failed, result.Msg)
	assert.True(t, result.Changed)
	assert.Equal(t, "aws sam cli installed successfully", result.Msg)
	assert.True(t, Probe(binDir, "sam"))
	assert.Equal(t, int64(1), hits.Load())

	// Fresh install passes no arguments to the installer.
	args, err := os.ReadFile(filepath.Join(installDir, "args"))
	require.NoError(t, err)
	assert.Equal(t, "\n", string(args))

	assertNoLeakedWorkspace(t, tmp)
}

func TestApplyInstallAWS(t *testing.T) {
	tmp := tempRoot(t)
	binDir := filepath.Join(t.TempDir(), "bin")
	installDir := filepath.Join(t.TempDir(), "aws-cli")

	archive := installerArchive(t, "aws/install", awsInstallerScript)
	server, _ := archiveServer(t, archive)

	result := Apply(AWSCLI, Request{
		State:       StatePresent,
		DownloadURL: server.URL,
		BinDir:      binDir,
		InstallDir:  installDir,
	})

	assert.False(t, result.Failed, result.Msg)
	assert.True(t, result.Changed)
	assert.Equal(t, "aws cli installed successfully", result.Msg)
	assert.True(t, Probe(binDir, "aws"))
	assert.True(t, Probe(binDir, "aws_completer"))

	receipt, err := os.ReadFile(filepath.Join(installDir, "receipt"))
	require.NoError(t, err)
	assert.Equal(t, "update=0\n", string(receipt))

	assertNoLeakedWorkspace(t, tmp)
}

func TestApplyInstallAlreadyPresent(t *testing.T) {
	binDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "sam"), []byte("bin"), 0755))

	server, hits := archiveServer(t, []byte("unused"))

	result := Apply(SAMCLI, Request{
		State:       StatePresent,
		DownloadURL: server.URL,
		BinDir:      binDir,
		InstallDir:  filepath.Join(t.TempDir(), "aws-sam-cli"),
	})

	assert.False(t, result.Failed)
	assert.False(t, result.Changed, "no work should be reported when already installed")
	assert.Equal(t, "aws sam cli already exists", result.Msg)
	assert.Equal(t, int64(0), hits.Load(), "no download should happen when already installed")
}

func TestApplyUpdateRunsEvenWhenPresent(t *testing.T) {
	binDir := filepath.Join(t.TempDir(), "bin")
	installDir := filepath.Join(t.TempDir(), "aws-cli")
	require.NoError(t, os.MkdirAll(binDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "aws"), []byte("old"), 0755))

	archive := installerArchive(t, "aws/install", awsInstallerScript)
	server, hits := archiveServer(t, archive)

	result := Apply(AWSCLI, Request{
		State:       StateUpdated,
		DownloadURL: server.URL,
		BinDir:      binDir,
		InstallDir:  installDir,
	})

	assert.False(t, result.Failed, result.Msg)
	assert.True(t, result.Changed)
	assert.Equal(t, "aws cli updated successfully", result.Msg)
	assert.Equal(t, int64(1), hits.Load())

	receipt, err := os.ReadFile(filepath.Join(installDir, "receipt"))
	require.NoError(t, err)
	assert.Equal(t, "update=1\n", string(receipt), "the update flag must reach the installer")
}

func TestApplyUpdateOnAbsentTool(t *testing.T) {
	binDir := filepath.Join(t.TempDir(), "bin")
	installDir := filepath.Join(t.TempDir(), "aws-sam-cli")

	archive := installerArchive(t, "install", samInstallerScript(binDir, installDir))
	server, _ := archiveServer(t, archive)

	result := Apply(SAMCLI, Request{
		State:       StateUpdated,
		DownloadURL: server.URL,
		BinDir:      binDir,
		InstallDir:  installDir,
	})

	assert.False(t, result.Failed, result.Msg)
	assert.Equal(t, "aws sam cli updated successfully", result.Msg)
	assert.True(t, Probe(binDir, "sam"), "update on a clean host still installs")
}

func TestApplyUninstall(t *testing.T) {
	binDir := t.TempDir()
	installDir := filepath.Join(t.TempDir(), "aws-cli")
	require.NoError(t, os.MkdirAll(filepath.Join(installDir, "v2"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "aws"), []byte("bin"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "aws_completer"), []byte("bin"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(installDir, "v2", "data"), []byte("x"), 0644))

	result := Apply(AWSCLI, Request{State: StateAbsent, BinDir: binDir, InstallDir: installDir})

	assert.False(t, result.Failed, result.Msg)
	assert.True(t, result.Changed)
	assert.Equal(t, "aws cli uninstalled successfully", result.Msg)
	assert.False(t, Probe(binDir, "aws"))
	assert.False(t, Probe(binDir, "aws_completer"), "companion files go with the executable")
	_, err := os.Stat(installDir)
	assert.True(t, os.IsNotExist(err))

	// Uninstalling again is a safe no-op.
	again := Apply(AWSCLI, Request{State: StateAbsent, BinDir: binDir, InstallDir: installDir})
	assert.False(t, again.Failed)
	assert.False(t, again.Changed)
	assert.Equal(t, "aws cli is not installed", again.Msg)
}

func TestApplyCorruptArchive(t *testing.T) {
	tmp := tempRoot(t)
	server, _ := archiveServer(t, []byte("definitely not a zip archive"))

	result := Apply(SAMCLI, Request{
		State:       StatePresent,
		DownloadURL: server.URL,
		BinDir:      filepath.Join(t.TempDir(), "bin"),
		InstallDir:  filepath.Join(t.TempDir(), "aws-sam-cli"),
	})

	assert.True(t, result.Failed, "a corrupt download must surface as a failure, not a silent no-op")
	assert.True(t, result.Changed)
	assert.Contains(t, result.Msg, "An error occurred: ")

	assertNoLeakedWorkspace(t, tmp)
}

func TestApplyDownloadFailure(t *testing.T) {
	tmp := tempRoot(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	result := Apply(SAMCLI, Request{
		State:       StatePresent,
		DownloadURL: server.URL,
		BinDir:      filepath.Join(t.TempDir(), "bin"),
		InstallDir:  filepath.Join(t.TempDir(), "aws-sam-cli"),
	})

	assert.True(t, result.Failed)
	assert.Contains(t, result.Msg, "An error occurred: ")
	assertNoLeakedWorkspace(t, tmp)
}

func TestApplyVerificationFailure(t *testing.T) {
	tmp := tempRoot(t)
	binDir := filepath.Join(t.TempDir(), "bin")
	installDir := filepath.Join(t.TempDir(), "aws-sam-cli")

	// An installer that exits cleanly without placing the executable.
	script := fmt.Sprintf("#!/bin/sh\nmkdir -p \"%s\"\n", installDir)
	archive := installerArchive(t, "install", script)
	server, _ := archiveServer(t, archive)

	result := Apply(SAMCLI, Request{
		State:       StatePresent,
		DownloadURL: server.URL,
		BinDir:      binDir,
		InstallDir:  installDir,
	})

	assert.True(t, result.Failed)
	assert.True(t, result.Changed)
	assert.Equal(t, "An error occurred: aws sam cli did not install successfully", result.Msg)
	assertNoLeakedWorkspace(t, tmp)
}

func TestApplyUserDownloadDir(t *testing.T) {
	binDir := filepath.Join(t.TempDir(), "bin")
	installDir := filepath.Join(t.TempDir(), "aws-sam-cli")
	downloadDir := t.TempDir()

	archive := installerArchive(t, "install", samInstallerScript(binDir, installDir))
	server, _ := archiveServer(t, archive)

	result := Apply(SAMCLI, Request{
		State:            StatePresent,
		DownloadURL:      server.URL,
		DownloadDir:      downloadDir,
		DownloadFileName: "sam.zip",
		BinDir:           binDir,
		InstallDir:       installDir,
	})

	assert.False(t, result.Failed, result.Msg)
	_, err := os.Stat(filepath.Join(downloadDir, "sam.zip"))
	assert.NoError(t, err, "user-specified download dirs are kept, archive included")
}

func TestApplyUnsupportedState(t *testing.T) {
	result := Apply(SAMCLI, Request{State: "latest"})
	assert.True(t, result.Failed)
	assert.False(t, result.Changed)
	assert.Contains(t, result.Msg, "unsupported state")
}

func TestApplyDefaults(t *testing.T) {
	req := withDefaults(AWSCLI, Request{})
	assert.Equal(t, StatePresent, req.State)
	assert.Equal(t, AWSCLI.DefaultURL, req.DownloadURL)
	assert.Equal(t, AWSCLI.DefaultFileName, req.DownloadFileName)
	assert.Equal(t, DefaultBinDir, req.BinDir)
	assert.Equal(t, AWSCLI.DefaultInstallDir, req.InstallDir)

	override := withDefaults(AWSCLI, Request{BinDir: "/opt/bin", State: StateAbsent})
	assert.Equal(t, "/opt/bin", override.BinDir)
	assert.Equal(t, StateAbsent, override.State)
}

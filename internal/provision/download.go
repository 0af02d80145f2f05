package provision

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/mattn/go-isatty"

	"aws-tools-linux/internal/logger"
)

// Download fetches the resource at url into destDir/fileName,
// overwriting any existing file at that path, and returns the full path
// of the written file. The transfer is blocking; there is no retry.
func Download(url, destDir, fileName string) (string, error) {
	destPath := filepath.Join(destDir, fileName)
	logger.Debug("[DEBUG] Downloading %s to %s\n", url, destPath)

	resp, err := http.Get(url)
	if err != nil {
		return "", &Error{Kind: KindNetwork, Err: fmt.Errorf("failed to GET %s: %w", url, err)}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &Error{Kind: KindNetwork, Err: fmt.Errorf("unexpected response downloading %s: HTTP status %d", url, resp.StatusCode)}
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", &Error{Kind: KindFilesystem, Err: fmt.Errorf("failed to create file %s: %w", destPath, err)}
	}
	defer func() {
		if cerr := out.Close(); cerr != nil {
			logger.Warn("[WARN] Failed to close destination file: %v\n", cerr)
		}
	}()

	body, finish := progress(resp.Body, resp.ContentLength)
	defer finish()

	if _, err := io.Copy(out, body); err != nil {
		return "", &Error{Kind: KindNetwork, Err: fmt.Errorf("failed to write %s: %w", destPath, err)}
	}

	logger.Debug("[DEBUG] Downloaded installer archive to %s\n", destPath)
	return destPath, nil
}

// progress wraps the download stream in a progress bar when stderr is a
// terminal. Non-interactive callers (automation, tests) get the reader
// back unchanged.
func progress(reader io.Reader, size int64) (io.Reader, func()) {
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return reader, func() {}
	}

	bar := pb.New64(size).
		SetRefreshRate(time.Second / 10).
		SetMaxWidth(100).
		Start()

	return bar.NewProxyReader(reader), func() { bar.Finish() }
}

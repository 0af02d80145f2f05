package provision

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/xi2/xz"

	"aws-tools-linux/internal/logger"
)

// Extract unpacks the archive at archivePath into a sibling directory
// named after the archive with its extension removed, creating the
// directory if needed, and returns that directory. The source archive
// is left in place. The vendor installer packages are zip files; other
// formats are routed by suffix for custom download URLs.
func Extract(archivePath string) (string, error) {
	dest := strippedPath(archivePath)
	if err := os.MkdirAll(dest, 0755); err != nil {
		return "", &Error{Kind: KindFilesystem, Err: fmt.Errorf("failed to create extraction directory %s: %w", dest, err)}
	}

	var err error
	switch {
	case strings.HasSuffix(archivePath, ".zip"):
		logger.Debug("[DEBUG] Archive type is zip\n")
		err = extractZip(archivePath, dest)
	case strings.HasSuffix(archivePath, ".7z"):
		logger.Debug("[DEBUG] Archive type is 7z\n")
		err = extract7z(archivePath, dest)
	case strings.HasSuffix(archivePath, ".tar"), strings.HasSuffix(archivePath, ".tar.gz"), strings.HasSuffix(archivePath, ".tgz"),
		strings.HasSuffix(archivePath, ".tar.bz2"), strings.HasSuffix(archivePath, ".tar.xz"):
		logger.Debug("[DEBUG] Archive type is tar\n")
		err = extractTar(archivePath, dest)
	default:
		err = fmt.Errorf("unsupported archive format: %s", archivePath)
	}
	if err != nil {
		return "", &Error{Kind: KindArchive, Err: err}
	}

	logger.Debug("[DEBUG] Extracted %s to %s\n", archivePath, dest)
	return dest, nil
}

// strippedPath removes the archive extension, so that
// /tmp/x/awscli-exe-linux-x86_64.zip extracts next to itself into
// /tmp/x/awscli-exe-linux-x86_64.
func strippedPath(archivePath string) string {
	for _, ext := range []string{".tar.gz", ".tar.bz2", ".tar.xz"} {
		if strings.HasSuffix(archivePath, ext) {
			return strings.TrimSuffix(archivePath, ext)
		}
	}
	return strings.TrimSuffix(archivePath, filepath.Ext(archivePath))
}

func extractZip(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("failed to open zip archive %s: %w", src, err)
	}
	defer r.Close()

	for _, f := range r.File {
		path := filepath.Join(dest, f.Name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		outFile, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
		if err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			outFile.Close()
			return err
		}
		_, err = io.Copy(outFile, rc)
		rc.Close()
		outFile.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func extract7z(src, dest string) error {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("failed to open 7z archive %s: %w", src, err)
	}
	defer r.Close()

	for _, f := range r.File {
		path := filepath.Join(dest, f.Name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, f.Mode()); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		outFile, err := os.Create(path)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(outFile, rc)
		rc.Close()
		outFile.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// extractTar handles tar and its gzip, bzip2, and xz compressed variants.
func extractTar(src, dest string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	var reader io.Reader = f
	switch {
	case strings.HasSuffix(src, ".tar.gz"), strings.HasSuffix(src, ".tgz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gr.Close()
		reader = gr
	case strings.HasSuffix(src, ".tar.bz2"):
		reader = bzip2.NewReader(f)
	case strings.HasSuffix(src, ".tar.xz"):
		xzr, err := xz.NewReader(f, 0)
		if err != nil {
			return err
		}
		reader = xzr
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		target := filepath.Join(dest, hdr.Name)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			outFile, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode))
			if err != nil {
				return err
			}
			if _, err := io.Copy(outFile, tr); err != nil {
				outFile.Close()
				return err
			}
			outFile.Close()
		}
	}
	return nil
}

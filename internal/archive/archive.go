// Package archive extracts downloaded e-print source archives into a
// directory tree.
package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extract unpacks an e-print archive into dest. The payload is tried as a
// ZIP archive first and as gzip-compressed tar otherwise, which covers
// both formats the archive service serves.
func Extract(r io.Reader, dest string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}
	if len(data) == 0 {
		return errors.New("empty archive")
	}

	if zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
		return extractZip(zr, dest)
	}

	return extractTarGz(bytes.NewReader(data), dest)
}

func extractZip(zr *zip.Reader, dest string) error {
	for _, f := range zr.File {
		path, ok := safePath(dest, f.Name)
		if !ok {
			continue
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return err
			}
			continue
		}

		if err := writeFile(path, func(w io.Writer) error {
			rc, err := f.Open()
			if err != nil {
				return err
			}
			defer rc.Close()
			_, err = io.Copy(w, rc)
			return err
		}); err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractTarGz(r io.Reader, dest string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("not a zip or gzip archive: %w", err)
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar archive: %w", err)
		}

		path, ok := safePath(dest, hdr.Name)
		if !ok {
			continue
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(path, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(path, func(w io.Writer) error {
				_, err := io.Copy(w, tr)
				return err
			}); err != nil {
				return fmt.Errorf("extracting %s: %w", hdr.Name, err)
			}
		}
	}
}

// safePath joins name onto dest and rejects entries that would escape it.
func safePath(dest, name string) (string, bool) {
	path := filepath.Join(dest, filepath.FromSlash(name))
	if !strings.HasPrefix(path, filepath.Clean(dest)+string(os.PathSeparator)) {
		return "", false
	}
	return path, true
}

func writeFile(path string, copyTo func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return copyTo(f)
}

// Package archive extracts release archives into a directory.
//
// The archive format is a closed enum selected from the filename
// extension. Extraction validates every entry path so a malicious
// archive cannot write outside the destination directory.
package archive

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

	"github.com/klauspost/compress/zstd"
	lzip "github.com/sorairolake/lzip-go"
	"github.com/ulikunitz/xz"
)

// Format identifies a supported archive format.
type Format int

const (
	FormatUnknown Format = iota
	FormatTarGz
	FormatTarXz
	FormatTarBz2
	FormatTarZst
	FormatTarLz
	FormatTar
	FormatZip
)

// String returns the canonical extension for the format.
func (f Format) String() string {
	switch f {
	case FormatTarGz:
		return "tar.gz"
	case FormatTarXz:
		return "tar.xz"
	case FormatTarBz2:
		return "tar.bz2"
	case FormatTarZst:
		return "tar.zst"
	case FormatTarLz:
		return "tar.lz"
	case FormatTar:
		return "tar"
	case FormatZip:
		return "zip"
	default:
		return "unknown"
	}
}

// UnsupportedFormatError indicates the archive filename matches no
// supported format.
type UnsupportedFormatError struct {
	Filename string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported archive format: %s", e.Filename)
}

// DetectFormat selects the format from a filename extension.
func DetectFormat(filename string) Format {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatTarGz
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return FormatTarXz
	case strings.HasSuffix(lower, ".tar.bz2"), strings.HasSuffix(lower, ".tbz2"), strings.HasSuffix(lower, ".tbz"):
		return FormatTarBz2
	case strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tzst"):
		return FormatTarZst
	case strings.HasSuffix(lower, ".tar.lz"), strings.HasSuffix(lower, ".tlz"):
		return FormatTarLz
	case strings.HasSuffix(lower, ".tar"):
		return FormatTar
	case strings.HasSuffix(lower, ".zip"):
		return FormatZip
	default:
		return FormatUnknown
	}
}

// Extract unpacks archivePath into destDir, selecting the extraction
// strategy from the filename. Returns *UnsupportedFormatError for
// unrecognized extensions.
func Extract(archivePath, destDir string) error {
	switch DetectFormat(archivePath) {
	case FormatTarGz:
		return extractCompressedTar(archivePath, destDir, func(r io.Reader) (io.Reader, func() error, error) {
			gzr, err := gzip.NewReader(r)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create gzip reader: %w", err)
			}
			return gzr, gzr.Close, nil
		})
	case FormatTarXz:
		return extractCompressedTar(archivePath, destDir, func(r io.Reader) (io.Reader, func() error, error) {
			xzr, err := xz.NewReader(r)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create xz reader: %w", err)
			}
			return xzr, nil, nil
		})
	case FormatTarBz2:
		return extractCompressedTar(archivePath, destDir, func(r io.Reader) (io.Reader, func() error, error) {
			return bzip2.NewReader(r), nil, nil
		})
	case FormatTarZst:
		return extractCompressedTar(archivePath, destDir, func(r io.Reader) (io.Reader, func() error, error) {
			zr, err := zstd.NewReader(r)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create zstd reader: %w", err)
			}
			return zr, func() error { zr.Close(); return nil }, nil
		})
	case FormatTarLz:
		return extractCompressedTar(archivePath, destDir, func(r io.Reader) (io.Reader, func() error, error) {
			lr, err := lzip.NewReader(r)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create lzip reader: %w", err)
			}
			return lr, nil, nil
		})
	case FormatTar:
		return extractCompressedTar(archivePath, destDir, func(r io.Reader) (io.Reader, func() error, error) {
			return r, nil, nil
		})
	case FormatZip:
		return extractZip(archivePath, destDir)
	default:
		return &UnsupportedFormatError{Filename: filepath.Base(archivePath)}
	}
}

// extractCompressedTar opens the archive, wraps it with the given
// decompressor, and extracts the contained tar stream.
func extractCompressedTar(archivePath, destDir string, wrap func(io.Reader) (io.Reader, func() error, error)) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	r, closer, err := wrap(file)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer() //nolint:errcheck
	}

	return extractTarReader(tar.NewReader(r), destDir)
}

// extractTarReader extracts all entries from a tar stream.
func extractTarReader(tr *tar.Reader, destDir string) error {
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar header: %w", err)
		}

		cleanPath := strings.TrimPrefix(header.Name, "./")
		if cleanPath == "" {
			continue
		}
		target := filepath.Join(destDir, filepath.FromSlash(cleanPath))

		// Validate that target stays within destDir (prevents path
		// traversal via ".." entries).
		if !isPathWithinDirectory(target, destDir) {
			return fmt.Errorf("archive entry escapes destination directory: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("failed to create parent directory: %w", err)
			}

			f, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return fmt.Errorf("failed to create file: %w", err)
			}

			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return fmt.Errorf("failed to write file: %w", err)
			}
			f.Close()

		case tar.TypeSymlink:
			if err := validateSymlinkTarget(header.Linkname, target, destDir); err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("failed to create parent directory: %w", err)
			}

			if err := atomicSymlink(header.Linkname, target); err != nil {
				return fmt.Errorf("failed to create symlink: %w", err)
			}
		}
	}

	return nil
}

// extractZip extracts a zip archive.
func extractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		cleanPath := strings.TrimPrefix(f.Name, "./")
		if cleanPath == "" {
			continue
		}
		target := filepath.Join(destDir, filepath.FromSlash(cleanPath))

		if !isPathWithinDirectory(target, destDir) {
			return fmt.Errorf("zip entry escapes destination directory: %s", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return fmt.Errorf("failed to create parent directory: %w", err)
		}

		if err := extractZipFile(f, target); err != nil {
			return err
		}
	}

	return nil
}

// extractZipFile writes one zip entry to target.
func extractZipFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open zip entry: %w", err)
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR|os.O_TRUNC, f.Mode())
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, rc); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// isPathWithinDirectory checks if targetPath is safely contained within
// basePath.
func isPathWithinDirectory(targetPath, basePath string) bool {
	absTarget, err := filepath.Abs(targetPath)
	if err != nil {
		return false
	}
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return false
	}

	// Add separator to prevent matching partial directory names
	// (e.g., /tmp/foo matching /tmp/foobar).
	return absTarget == absBase || strings.HasPrefix(absTarget, absBase+string(os.PathSeparator))
}

// validateSymlinkTarget validates that a symlink target cannot escape the
// destination directory.
func validateSymlinkTarget(linkTarget, linkLocation, destDir string) error {
	if filepath.IsAbs(linkTarget) {
		return fmt.Errorf("absolute symlink targets are not allowed: %s -> %s", linkLocation, linkTarget)
	}

	resolvedTarget := filepath.Join(filepath.Dir(linkLocation), linkTarget)
	if !isPathWithinDirectory(resolvedTarget, destDir) {
		return fmt.Errorf("symlink target escapes destination directory: %s -> %s (resolves to %s)",
			linkLocation, linkTarget, resolvedTarget)
	}

	return nil
}

// atomicSymlink creates a symlink via a temporary name and rename, so a
// half-created link is never visible at the final path.
func atomicSymlink(target, linkPath string) error {
	tmpLink := linkPath + ".tmp"

	os.Remove(tmpLink)

	if err := os.Symlink(target, tmpLink); err != nil {
		return err
	}

	if err := os.Rename(tmpLink, linkPath); err != nil {
		os.Remove(tmpLink)
		return err
	}

	return nil
}

// Package checksum verifies downloaded archives against a release's
// checksum manifest.
//
// The manifest is the sha256sum-style text format published alongside
// release archives: one record per line, a hex digest followed by
// whitespace and the asset filename. Lookup is by exact basename; a
// record for "orca-cli_1.2.3_linux_amd64.tar.gz" never matches
// "orca-cli_1.2.3_linux_amd64.tar.gz.sig" or any other near-name.
package checksum

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Record is one (digest, filename) entry from a manifest.
type Record struct {
	Digest   string // lowercase hex SHA-256
	Filename string
}

// Manifest is an ordered sequence of checksum records.
type Manifest struct {
	Records []Record
}

// MissingError indicates the manifest has no record for the target file.
type MissingError struct {
	Filename     string
	ManifestPath string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("no checksum record for %s in %s", e.Filename, e.ManifestPath)
}

// MismatchError indicates the computed digest differs from the manifest.
type MismatchError struct {
	Filename string
	Expected string
	Actual   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s:\n  expected: %s\n  actual:   %s",
		e.Filename, e.Expected, e.Actual)
}

// ParseManifest reads a checksum manifest. Blank lines and '#' comments
// are skipped; each remaining line must be "<hex-digest><ws><filename>".
func ParseManifest(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	m := &Manifest{}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("malformed manifest line %d: %q", lineNo, line)
		}

		digest := strings.ToLower(fields[0])
		if !isHexDigest(digest) {
			return nil, fmt.Errorf("malformed digest on manifest line %d: %q", lineNo, fields[0])
		}

		// sha256sum marks binary-mode records with a '*' prefix on the
		// filename.
		filename := strings.TrimPrefix(fields[1], "*")

		m.Records = append(m.Records, Record{Digest: digest, Filename: filename})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	return m, nil
}

// Lookup returns the digest recorded for exactly the given basename.
func (m *Manifest) Lookup(basename string) (string, bool) {
	for _, rec := range m.Records {
		if rec.Filename == basename {
			return rec.Digest, true
		}
	}
	return "", false
}

// ComputeFile computes the SHA-256 digest of a file, streaming its
// content. Returns the lowercase hex-encoded digest.
func ComputeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify checks filePath against the record for its basename in the
// manifest at manifestPath. Returns *MissingError when the manifest has
// no record for the basename and *MismatchError when the digests differ.
// Hex comparison is case-insensitive.
func Verify(filePath, manifestPath string) error {
	manifest, err := ParseManifest(manifestPath)
	if err != nil {
		return err
	}

	basename := filepath.Base(filePath)
	expected, ok := manifest.Lookup(basename)
	if !ok {
		return &MissingError{Filename: basename, ManifestPath: manifestPath}
	}

	actual, err := ComputeFile(filePath)
	if err != nil {
		return err
	}

	if actual != strings.ToLower(expected) {
		return &MismatchError{Filename: basename, Expected: expected, Actual: actual}
	}

	return nil
}

// isHexDigest reports whether s is a 64-character hex string (SHA-256).
func isHexDigest(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}

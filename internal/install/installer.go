// Package install runs the verified-install pipeline: resolve the
// release tag, download the archive and checksum manifest, verify the
// archive digest, extract it, and copy the binary into the target
// directory.
//
// The pipeline is strictly sequential; no stage starts before the
// previous stage has succeeded, and a checksum mismatch aborts before
// any extraction. All intermediate artifacts live in a scratch
// workspace that is removed whatever the outcome, so a failed attempt
// leaves the target directory untouched.
package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/orca-dev/orca-install/internal/archive"
	"github.com/orca-dev/orca-install/internal/checksum"
	"github.com/orca-dev/orca-install/internal/config"
	"github.com/orca-dev/orca-install/internal/fetch"
	"github.com/orca-dev/orca-install/internal/log"
	"github.com/orca-dev/orca-install/internal/version"
)

// PermissionError indicates the target directory was not writable at the
// current privilege level.
type PermissionError struct {
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("insufficient permission to install to %s", e.Path)
}

func (e *PermissionError) Unwrap() error {
	return e.Err
}

// tagResolver resolves a requested tag to a concrete release.
type tagResolver interface {
	Resolve(ctx context.Context, ownerRepo, requestedTag string) (*version.ReleaseInfo, error)
}

// fetchFunc downloads a URL into a destination file.
type fetchFunc func(ctx context.Context, url, dest string, opts ...fetch.Option) error

// escalateFunc retries a failed copy with elevated privileges.
type escalateFunc func(ctx context.Context, src, dst string) error

// Installer runs the install pipeline for one immutable Config.
type Installer struct {
	cfg      config.Config
	logger   log.Logger
	resolver tagResolver
	fetch    fetchFunc
	escalate escalateFunc
}

// Option configures an Installer.
type Option func(*Installer)

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l log.Logger) Option {
	return func(i *Installer) { i.logger = l }
}

// WithResolver overrides the tag resolver (for testing).
func WithResolver(r tagResolver) Option {
	return func(i *Installer) { i.resolver = r }
}

// WithFetchFunc overrides the download function (for testing).
func WithFetchFunc(f fetchFunc) Option {
	return func(i *Installer) { i.fetch = f }
}

// WithoutEscalation disables the sudo retry for the final copy.
func WithoutEscalation() Option {
	return func(i *Installer) { i.escalate = nil }
}

// New creates an Installer for the given configuration.
func New(cfg config.Config, opts ...Option) *Installer {
	var resolverOpts []version.Option
	if cfg.APIBaseURL != "" {
		resolverOpts = append(resolverOpts, version.WithBaseURL(cfg.APIBaseURL))
	}
	inst := &Installer{
		cfg:      cfg,
		logger:   log.Default(),
		resolver: version.New(resolverOpts...),
		fetch:    fetch.Fetch,
		escalate: sudoCopy,
	}
	for _, opt := range opts {
		opt(inst)
	}
	return inst
}

// Run executes the pipeline and returns the installed binary path.
func (i *Installer) Run(ctx context.Context) (string, error) {
	cfg := i.cfg
	logger := i.logger.With("repo", cfg.OwnerRepo(), "platform", cfg.Platform.String())

	ws, err := NewWorkspace(cfg.TmpRoot, logger)
	if err != nil {
		return "", err
	}
	defer ws.Close()

	logger.Info("resolving release tag", "requested", requestedOrLatest(cfg.Tag))
	rel, err := i.resolver.Resolve(ctx, cfg.OwnerRepo(), cfg.Tag)
	if err != nil {
		return "", err
	}
	logger.Debug("resolved release", "tag", rel.Tag, "version", rel.Version)

	archiveName := ArchiveName(cfg.Project, rel.Version, cfg.Platform)
	manifestName := ManifestName(cfg.Project, rel.Version)
	archivePath := ws.Path(archiveName)
	manifestPath := ws.Path(manifestName)

	// The two downloads are independent but run sequentially; both must
	// complete before verification either way.
	logger.Info("downloading archive", "asset", archiveName)
	archiveURL := DownloadURL(cfg.DownloadBaseURL, cfg.Owner, cfg.Repo, rel.Tag, archiveName)
	if err := i.fetch(ctx, archiveURL, archivePath, fetch.WithLogger(logger)); err != nil {
		return "", err
	}

	logger.Info("downloading checksum manifest", "asset", manifestName)
	manifestURL := DownloadURL(cfg.DownloadBaseURL, cfg.Owner, cfg.Repo, rel.Tag, manifestName)
	if err := i.fetch(ctx, manifestURL, manifestPath, fetch.WithLogger(logger)); err != nil {
		return "", err
	}

	logger.Info("verifying checksum", "asset", archiveName)
	if err := checksum.Verify(archivePath, manifestPath); err != nil {
		return "", err
	}
	logger.Debug("checksum verified")

	extractDir := ws.Path("extracted")
	if err := os.MkdirAll(extractDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create extraction directory: %w", err)
	}
	logger.Info("extracting archive")
	if err := archive.Extract(archivePath, extractDir); err != nil {
		return "", err
	}

	binaryName := cfg.BinaryName + cfg.Platform.ExeSuffix()
	srcPath := filepath.Join(extractDir, binaryName)
	if _, err := os.Stat(srcPath); err != nil {
		return "", fmt.Errorf("binary %s not found in archive: %w", binaryName, err)
	}

	installedPath, err := i.installBinary(ctx, srcPath, binaryName)
	if err != nil {
		return "", err
	}

	logger.Info("installed", "path", installedPath)
	return installedPath, nil
}

// installBinary copies the extracted binary into the target directory,
// overwriting any existing file. A permission failure is retried exactly
// once with elevated privileges when escalation is available.
func (i *Installer) installBinary(ctx context.Context, srcPath, binaryName string) (string, error) {
	targetDir := i.cfg.BinDir
	dstPath := filepath.Join(targetDir, binaryName)

	mkdirErr := os.MkdirAll(targetDir, 0755)
	copyErr := mkdirErr
	if copyErr == nil {
		copyErr = copyExecutable(srcPath, dstPath)
	}
	if copyErr == nil {
		return dstPath, nil
	}

	if !errors.Is(copyErr, fs.ErrPermission) {
		return "", fmt.Errorf("failed to install %s: %w", binaryName, copyErr)
	}

	permErr := &PermissionError{Path: targetDir, Err: copyErr}
	if i.escalate == nil || !canEscalate() {
		return "", permErr
	}

	i.logger.Warn("target directory not writable, retrying with sudo", "dir", targetDir)
	if err := i.escalate(ctx, srcPath, dstPath); err != nil {
		return "", fmt.Errorf("privileged install failed: %w", errors.Join(permErr, err))
	}

	return dstPath, nil
}

// copyExecutable copies src to dst and marks it executable. dst is
// truncated when it already exists.
func copyExecutable(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close destination: %w", err)
	}

	if err := os.Chmod(dst, 0755); err != nil {
		return fmt.Errorf("failed to chmod: %w", err)
	}

	return nil
}

// sudoCopy installs src to dst via sudo. Used for the single
// privilege-escalation retry when the target directory is not writable.
func sudoCopy(ctx context.Context, src, dst string) error {
	sudo, err := exec.LookPath("sudo")
	if err != nil {
		return fmt.Errorf("sudo not available: %w", err)
	}

	mkdir := exec.CommandContext(ctx, sudo, "mkdir", "-p", filepath.Dir(dst))
	mkdir.Stdin = os.Stdin
	mkdir.Stderr = os.Stderr
	if err := mkdir.Run(); err != nil {
		return fmt.Errorf("sudo mkdir failed: %w", err)
	}

	cp := exec.CommandContext(ctx, sudo, "cp", src, dst)
	cp.Stdin = os.Stdin
	cp.Stderr = os.Stderr
	if err := cp.Run(); err != nil {
		return fmt.Errorf("sudo cp failed: %w", err)
	}

	chmod := exec.CommandContext(ctx, sudo, "chmod", "0755", dst)
	chmod.Stdin = os.Stdin
	chmod.Stderr = os.Stderr
	if err := chmod.Run(); err != nil {
		return fmt.Errorf("sudo chmod failed: %w", err)
	}

	return nil
}

// requestedOrLatest names the tag being resolved for diagnostics.
func requestedOrLatest(tag string) string {
	if tag == "" {
		return "latest"
	}
	return tag
}

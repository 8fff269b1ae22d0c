// Package config holds the immutable run configuration for an install
// attempt. The Config is assembled once in main after flag, environment,
// and user-config merging, then threaded through every pipeline stage.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/orca-dev/orca-install/internal/platform"
)

const (
	// EnvBinDir overrides the target installation directory.
	EnvBinDir = "ORCA_BINDIR"

	// EnvTmpRoot overrides the parent directory for scratch workspaces.
	EnvTmpRoot = "ORCA_TMPDIR"

	// EnvAPITimeout configures the HTTP request timeout.
	EnvAPITimeout = "ORCA_API_TIMEOUT"

	// DefaultAPITimeout is the default timeout for HTTP requests.
	DefaultAPITimeout = 30 * time.Second

	// DefaultOwner is the GitHub organization publishing releases.
	DefaultOwner = "orca-dev"

	// DefaultRepo is the GitHub repository publishing releases.
	DefaultRepo = "orca-cli"

	// DefaultProject is the project name used in asset filenames.
	DefaultProject = "orca-cli"

	// DefaultBinaryName is the executable installed into the bin directory.
	DefaultBinaryName = "orca"

	// DefaultDownloadBaseURL is the host serving release assets.
	DefaultDownloadBaseURL = "https://github.com"
)

// Config is the immutable configuration for one install attempt.
type Config struct {
	// Owner and Repo identify the GitHub repository publishing releases.
	Owner string
	Repo  string

	// Project is the name used in asset filename templates.
	Project string

	// BinaryName is the executable to locate and install (without the
	// platform executable suffix).
	BinaryName string

	// Tag is the requested release tag. Empty means "latest".
	Tag string

	// BinDir is the target installation directory.
	BinDir string

	// TmpRoot is the parent directory for scratch workspaces. Empty
	// means the system temporary directory.
	TmpRoot string

	// DownloadBaseURL is the host serving release download assets.
	DownloadBaseURL string

	// APIBaseURL overrides the GitHub API endpoint. Empty means the
	// public API. Used by tests.
	APIBaseURL string

	// Platform is the validated host platform.
	Platform platform.Platform
}

// Default returns a Config populated with defaults, environment overrides
// applied. The caller layers flag values on top before freezing.
func Default() Config {
	cfg := Config{
		Owner:           DefaultOwner,
		Repo:            DefaultRepo,
		Project:         DefaultProject,
		BinaryName:      DefaultBinaryName,
		BinDir:          defaultBinDir(),
		TmpRoot:         os.Getenv(EnvTmpRoot),
		DownloadBaseURL: DefaultDownloadBaseURL,
	}
	if dir := os.Getenv(EnvBinDir); dir != "" {
		cfg.BinDir = dir
	}
	return cfg
}

// OwnerRepo returns the "owner/repo" slug.
func (c Config) OwnerRepo() string {
	return c.Owner + "/" + c.Repo
}

// defaultBinDir picks ~/.local/bin, falling back to a relative bin
// directory when the home directory cannot be determined.
func defaultBinDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "bin"
	}
	return filepath.Join(home, ".local", "bin")
}

// GetAPITimeout returns the configured HTTP timeout from ORCA_API_TIMEOUT.
// If not set or invalid, returns DefaultAPITimeout (30 seconds).
// Accepts duration strings like "30s", "1m", "2m30s".
func GetAPITimeout() time.Duration {
	envValue := os.Getenv(EnvAPITimeout)
	if envValue == "" {
		return DefaultAPITimeout
	}

	duration, err := time.ParseDuration(envValue)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: invalid %s value %q, using default %v\n",
			EnvAPITimeout, envValue, DefaultAPITimeout)
		return DefaultAPITimeout
	}

	// Validate reasonable range (1 second to 10 minutes).
	if duration < 1*time.Second {
		fmt.Fprintf(os.Stderr, "Warning: %s too low (%v), using minimum 1s\n",
			EnvAPITimeout, duration)
		return 1 * time.Second
	}
	if duration > 10*time.Minute {
		fmt.Fprintf(os.Stderr, "Warning: %s too high (%v), using maximum 10m\n",
			EnvAPITimeout, duration)
		return 10 * time.Minute
	}

	return duration
}

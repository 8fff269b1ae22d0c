package main

import (
	"errors"

	"github.com/orca-dev/orca-install/internal/archive"
	"github.com/orca-dev/orca-install/internal/checksum"
	"github.com/orca-dev/orca-install/internal/fetch"
	"github.com/orca-dev/orca-install/internal/install"
	"github.com/orca-dev/orca-install/internal/platform"
	"github.com/orca-dev/orca-install/internal/version"
)

// Exit codes for different failure modes.
// These enable scripts to distinguish between failure modes.
const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0

	// ExitGeneral indicates a general error
	ExitGeneral = 1

	// ExitUsage indicates invalid arguments or usage error
	ExitUsage = 2

	// ExitPlatform indicates the host platform is not supported
	ExitPlatform = 3

	// ExitResolution indicates the release tag could not be resolved
	ExitResolution = 4

	// ExitDownload indicates an asset download failed
	ExitDownload = 5

	// ExitVerify indicates checksum verification failed
	ExitVerify = 6

	// ExitInstall indicates the final install step failed
	ExitInstall = 7
)

// exitCodeFor maps a pipeline error to its exit code.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *usageError
	if errors.As(err, &usageErr) {
		return ExitUsage
	}

	var platErr *platform.UnsupportedPlatformError
	if errors.As(err, &platErr) {
		return ExitPlatform
	}

	var resErr *version.ResolverError
	if errors.As(err, &resErr) {
		return ExitResolution
	}
	var rlErr *version.RateLimitError
	if errors.As(err, &rlErr) {
		return ExitResolution
	}

	var dlErr *fetch.DownloadError
	if errors.As(err, &dlErr) {
		return ExitDownload
	}

	var missingErr *checksum.MissingError
	if errors.As(err, &missingErr) {
		return ExitVerify
	}
	var mismatchErr *checksum.MismatchError
	if errors.As(err, &mismatchErr) {
		return ExitVerify
	}

	var fmtErr *archive.UnsupportedFormatError
	if errors.As(err, &fmtErr) {
		return ExitInstall
	}
	var permErr *install.PermissionError
	if errors.As(err, &permErr) {
		return ExitInstall
	}

	return ExitGeneral
}

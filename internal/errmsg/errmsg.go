// Package errmsg formats pipeline errors with possible causes and
// actionable suggestions.
package errmsg

import (
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/orca-dev/orca-install/internal/checksum"
	"github.com/orca-dev/orca-install/internal/fetch"
	"github.com/orca-dev/orca-install/internal/install"
	"github.com/orca-dev/orca-install/internal/platform"
	"github.com/orca-dev/orca-install/internal/version"
)

// Format returns a formatted error message with possible causes and
// suggestions for the failure modes the install pipeline produces.
// Unrecognized errors come back as their plain Error() string.
func Format(err error) string {
	if err == nil {
		return ""
	}

	var platErr *platform.UnsupportedPlatformError
	if errors.As(err, &platErr) {
		return formatPlatformError(platErr)
	}

	var rlErr *version.RateLimitError
	if errors.As(err, &rlErr) {
		return formatRateLimitError(rlErr)
	}

	var resolverErr *version.ResolverError
	if errors.As(err, &resolverErr) {
		return formatResolverError(resolverErr)
	}

	var dlErr *fetch.DownloadError
	if errors.As(err, &dlErr) {
		return formatDownloadError(dlErr)
	}

	var missingErr *checksum.MissingError
	if errors.As(err, &missingErr) {
		return formatChecksumMissing(missingErr)
	}

	var mismatchErr *checksum.MismatchError
	if errors.As(err, &mismatchErr) {
		return formatChecksumMismatch(mismatchErr)
	}

	var permErr *install.PermissionError
	if errors.As(err, &permErr) {
		return formatPermissionError(permErr)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return formatNetworkError(netErr)
	}

	return err.Error()
}

func formatPlatformError(err *platform.UnsupportedPlatformError) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Run 'orca-install platforms' to see supported platforms\n")
	sb.WriteString("  - Build from source if your platform has no published archive\n")

	return sb.String()
}

func formatResolverError(err *version.ResolverError) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	switch err.Type {
	case version.ErrTypeNotFound:
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - The release tag does not exist\n")
		sb.WriteString("  - Typo in the requested tag\n")

		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Run 'orca-install versions' to see available releases\n")
		sb.WriteString("  - Omit --tag to install the latest release\n")

	case version.ErrTypeNetwork, version.ErrTypeTimeout, version.ErrTypeDNS:
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - Network connectivity issue\n")
		sb.WriteString("  - GitHub API temporarily unavailable\n")

		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Check your internet connection\n")
		sb.WriteString("  - Try again in a few minutes\n")

	case version.ErrTypeRateLimit:
		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Set GITHUB_TOKEN to raise the API rate limit\n")
		sb.WriteString("  - Wait a few minutes before retrying\n")

	case version.ErrTypeTLS:
		sb.WriteString("\nPossible causes:\n")
		sb.WriteString("  - A proxy or firewall intercepting TLS\n")
		sb.WriteString("  - Outdated system certificate store\n")

		sb.WriteString("\nSuggestions:\n")
		sb.WriteString("  - Check your proxy configuration\n")
		sb.WriteString("  - Update your system CA certificates\n")

	default:
		if s := err.Suggestion(); s != "" {
			sb.WriteString("\n")
			sb.WriteString(s)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func formatRateLimitError(err *version.RateLimitError) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nSuggestions:\n")
	if !err.Authenticated {
		sb.WriteString("  - Set GITHUB_TOKEN to raise the API rate limit\n")
	}
	if !err.ResetTime.IsZero() {
		sb.WriteString(fmt.Sprintf("  - The limit resets at %s\n", err.ResetTime.Format("15:04:05 MST")))
	} else {
		sb.WriteString("  - Wait a few minutes before retrying\n")
	}

	return sb.String()
}

func formatDownloadError(err *fetch.DownloadError) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	switch {
	case err.StatusCode == 404:
		sb.WriteString("  - The release has no archive for this platform\n")
		sb.WriteString("  - The asset naming changed between releases\n")
	case err.StatusCode >= 500:
		sb.WriteString("  - GitHub is having a temporary problem\n")
	default:
		sb.WriteString("  - Network connectivity issue\n")
		sb.WriteString("  - Service temporarily unavailable\n")
	}

	sb.WriteString("\nSuggestions:\n")
	if err.StatusCode == 404 {
		sb.WriteString("  - Run 'orca-install platforms' to check platform support\n")
		sb.WriteString("  - Run 'orca-install versions' and try another release\n")
	} else {
		sb.WriteString("  - Check your internet connection\n")
		sb.WriteString("  - Try again in a few minutes\n")
	}

	return sb.String()
}

func formatChecksumMissing(err *checksum.MissingError) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - The release manifest does not cover this platform\n")
	sb.WriteString("  - The release was published with incomplete assets\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Try another release with 'orca-install -t <tag>'\n")

	return sb.String()
}

func formatChecksumMismatch(err *checksum.MismatchError) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString("  - The download was corrupted in transit\n")
	sb.WriteString("  - The published asset was modified after release\n")

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Run the install again; a fresh download may succeed\n")
	sb.WriteString("  - If it persists, report it to the release maintainers\n")

	return sb.String()
}

func formatPermissionError(err *install.PermissionError) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	sb.WriteString(fmt.Sprintf("  - %s is not writable by the current user\n", err.Path))

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Pick a writable directory with -b (e.g. -b ~/.local/bin)\n")
	sb.WriteString("  - Re-run with sudo for system directories\n")

	return sb.String()
}

func formatNetworkError(err net.Error) string {
	var sb strings.Builder
	sb.WriteString(err.Error())
	sb.WriteString("\n")

	sb.WriteString("\nPossible causes:\n")
	if err.Timeout() {
		sb.WriteString("  - Request timed out\n")
		sb.WriteString("  - Slow or unstable network connection\n")
	} else {
		sb.WriteString("  - Network connectivity issue\n")
		sb.WriteString("  - DNS resolution failure\n")
	}

	sb.WriteString("\nSuggestions:\n")
	sb.WriteString("  - Check your internet connection\n")
	sb.WriteString("  - Try again in a few minutes\n")

	return sb.String()
}

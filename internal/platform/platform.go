// Package platform detects and validates the host platform.
//
// Detection maps raw OS and architecture identifiers to the normalized
// (os, arch) pair used in release asset filenames, then validates the
// pair against the supported-combinations allowlist. Validation happens
// before any network activity so an unsupported host fails fast.
package platform

import (
	"fmt"
	"runtime"
	"sort"
	"strings"
)

// Platform is a normalized (OS, architecture) pair.
type Platform struct {
	OS   string // "linux", "darwin", "windows"
	Arch string // "amd64", "arm64", "386"
}

// String returns the "os/arch" form used in diagnostics.
func (p Platform) String() string {
	return p.OS + "/" + p.Arch
}

// ExeSuffix returns the executable filename suffix for the platform.
func (p Platform) ExeSuffix() string {
	if p.OS == "windows" {
		return ".exe"
	}
	return ""
}

// ArchiveExt returns the release archive extension for the platform.
// Windows releases ship as zip, everything else as gzip-compressed tar.
func (p Platform) ArchiveExt() string {
	if p.OS == "windows" {
		return "zip"
	}
	return "tar.gz"
}

// UnsupportedPlatformError indicates the host maps to no supported
// (os, arch) combination.
type UnsupportedPlatformError struct {
	OS   string
	Arch string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform: %s/%s (supported: %s)",
		e.OS, e.Arch, strings.Join(Supported(), ", "))
}

// osAliases maps raw OS identifiers to normalized values. Covers uname
// spellings and the Windows POSIX layers that report their own names.
var osAliases = map[string]string{
	"linux":   "linux",
	"darwin":  "darwin",
	"macos":   "darwin",
	"osx":     "darwin",
	"windows": "windows",
	"mingw":   "windows",
	"msys":    "windows",
	"cygwin":  "windows",
	"win32":   "windows",
}

// archAliases maps raw architecture identifiers to normalized values.
var archAliases = map[string]string{
	"amd64":   "amd64",
	"x86_64":  "amd64",
	"x64":     "amd64",
	"arm64":   "arm64",
	"aarch64": "arm64",
	"386":     "386",
	"i386":    "386",
	"i686":    "386",
	"x86":     "386",
}

// supportedPairs is the allowlist of (os, arch) combinations that have
// published release assets.
var supportedPairs = map[Platform]bool{
	{OS: "linux", Arch: "amd64"}:   true,
	{OS: "linux", Arch: "arm64"}:   true,
	{OS: "linux", Arch: "386"}:     true,
	{OS: "darwin", Arch: "amd64"}:  true,
	{OS: "darwin", Arch: "arm64"}:  true,
	{OS: "windows", Arch: "amd64"}: true,
	{OS: "windows", Arch: "arm64"}: true,
	{OS: "windows", Arch: "386"}:   true,
}

// Detect returns the normalized platform of the running host, validated
// against the supported allowlist.
func Detect() (Platform, error) {
	return Normalize(runtime.GOOS, runtime.GOARCH)
}

// Normalize maps raw OS and architecture identifiers to a validated
// Platform. Matching is case-insensitive and tolerates uname-style
// prefixes such as "mingw64_nt-10.0".
func Normalize(rawOS, rawArch string) (Platform, error) {
	osName, okOS := lookupAlias(rawOS, osAliases)
	arch, okArch := lookupAlias(rawArch, archAliases)
	if !okOS || !okArch {
		return Platform{}, &UnsupportedPlatformError{OS: rawOS, Arch: rawArch}
	}

	p := Platform{OS: osName, Arch: arch}
	if !supportedPairs[p] {
		return Platform{}, &UnsupportedPlatformError{OS: osName, Arch: arch}
	}
	return p, nil
}

// lookupAlias resolves a raw identifier against an alias table. Exact
// matches win; otherwise the longest matching alias prefix handles
// decorated uname output like "mingw64_nt-10.0". Longest wins so
// "x86_64-v3" resolves through "x86_64", not "x86".
func lookupAlias(raw string, aliases map[string]string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if normalized, ok := aliases[lower]; ok {
		return normalized, true
	}
	best := ""
	for alias := range aliases {
		if strings.HasPrefix(lower, alias) && len(alias) > len(best) {
			best = alias
		}
	}
	if best == "" {
		return "", false
	}
	return aliases[best], true
}

// Supported returns the allowlisted "os/arch" pairs in sorted order.
func Supported() []string {
	pairs := make([]string, 0, len(supportedPairs))
	for p := range supportedPairs {
		pairs = append(pairs, p.String())
	}
	sort.Strings(pairs)
	return pairs
}

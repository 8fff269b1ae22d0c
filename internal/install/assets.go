package install

import (
	"fmt"

	"github.com/orca-dev/orca-install/internal/platform"
)

// Release assets follow the goreleaser naming convention:
//
//	{project}_{version}_{os}_{arch}.{ext}
//	{project}_{version}_checksums.txt
//
// where version is the release tag without its leading "v". Asset names
// are fully determined by the resolved tag and the detected platform, so
// the same inputs always fetch the same files.

// ArchiveName returns the release archive filename for a platform.
func ArchiveName(project, version string, p platform.Platform) string {
	return fmt.Sprintf("%s_%s_%s_%s.%s", project, version, p.OS, p.Arch, p.ArchiveExt())
}

// ManifestName returns the checksum manifest filename.
func ManifestName(project, version string) string {
	return fmt.Sprintf("%s_%s_checksums.txt", project, version)
}

// DownloadURL returns the URL of a release asset.
func DownloadURL(baseURL, owner, repo, tag, assetName string) string {
	return fmt.Sprintf("%s/%s/%s/releases/download/%s/%s", baseURL, owner, repo, tag, assetName)
}

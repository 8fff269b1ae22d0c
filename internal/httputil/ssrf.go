package httputil

import (
	"fmt"
	"net"
)

// ValidateIP rejects redirect targets that would move a release download
// off the public internet. GitHub redirects asset downloads to its CDN,
// so a redirect landing on a private, loopback, link-local (cloud
// metadata endpoints live here), multicast, or unspecified address can
// only mean a spoofed or compromised response. The host parameter names
// the redirect target in the error.
func ValidateIP(ip net.IP, host string) error {
	var kind string
	switch {
	case ip.IsPrivate():
		kind = "private"
	case ip.IsLoopback():
		kind = "loopback"
	case ip.IsLinkLocalUnicast():
		kind = "link-local"
	case ip.IsLinkLocalMulticast():
		kind = "link-local multicast"
	case ip.IsMulticast():
		kind = "multicast"
	case ip.IsUnspecified():
		kind = "unspecified"
	default:
		return nil
	}
	return fmt.Errorf("refusing redirect to %s IP: %s (%s)", kind, host, ip)
}

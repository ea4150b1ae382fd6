package common

import (
	"net"
	"net/url"
	"strings"
)

// IsTestURL reports whether the URL points at a local test host:
// localhost, *.localhost, loopback, or unspecified addresses.
// Crawling such URLs is only allowed in development mode.
func IsTestURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}

	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback() || ip.IsUnspecified()
	}

	return false
}

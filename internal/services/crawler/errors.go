package crawler

import (
	"errors"
	"fmt"
)

// ErrNoURLsDiscovered is returned when discovery produces an empty sequence.
// The seed is appended before any fetch, so this only fires if the frontier
// was never seeded.
var ErrNoURLsDiscovered = errors.New("no URLs discovered from seed")

// BlockedDomainError is returned when a seed hostname matches the deny-list
// of domains known to block automated access. Fatal: the run aborts before
// any network call.
type BlockedDomainError struct {
	Hostname string
}

func (e *BlockedDomainError) Error() string {
	return fmt.Sprintf("domain %s blocks automated access - try a different site such as a blog, documentation site, or news outlet", e.Hostname)
}

// BlockedSiteError is returned when all fetch attempts against a
// known-blocking host are exhausted. Carries a user-facing hint.
type BlockedSiteError struct {
	Hostname string
	Err      error
}

func (e *BlockedSiteError) Error() string {
	return fmt.Sprintf("%s appears to block automated requests - consider crawling a site that permits bots instead", e.Hostname)
}

func (e *BlockedSiteError) Unwrap() error {
	return e.Err
}

// HTTPStatusError is returned when a fetch succeeds but the response status
// is outside the 2xx range. Not retried; becomes a page-level error.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

package sites

import "errors"

// atCapacityError signals that MaxSites are already mounted (HTTP 429).
type atCapacityError struct{ max int }

func (e atCapacityError) Error() string { return "at capacity: maximum number of sites reached" }

// ErrAtCapacity returns the error reported when max sites are mounted.
func ErrAtCapacity(max int) error { return atCapacityError{max: max} }

// IsAtCapacity reports whether err indicates a full manager.
func IsAtCapacity(err error) bool {
	_, ok := err.(atCapacityError)
	return ok
}

type siteNotFoundError struct{ id string }

func (e siteNotFoundError) Error() string { return "site not found: " + e.id }

// ErrSiteNotFound returns an error for an unknown or already removed site id.
func ErrSiteNotFound(id string) error { return siteNotFoundError{id: id} }

// IsSiteNotFound reports whether err indicates a missing site.
func IsSiteNotFound(err error) bool {
	_, ok := err.(siteNotFoundError)
	return ok
}

// ErrClosed is returned by Add after Close.
var ErrClosed = errors.New("site manager closed")

// ErrRemoved is reported by Site.Wait when the site was removed before its
// enrichment outcome was applied.
var ErrRemoved = errors.New("site removed")

package domain

// OutcomeKind enumerates the possible results of a redirect resolution.
// The not-found kinds are expected, frequent and user-facing; they are
// explicit values rather than errors so the caller can distinguish them
// from a store failure.
type OutcomeKind int

const (
	// KindRedirect means a target was selected and the caller should redirect.
	KindRedirect OutcomeKind = iota

	// KindSiteRoot means the request had an empty short path; the caller
	// decides what lives at the root of a routed domain.
	KindSiteRoot

	// KindDomainNotFound means no active domain matches the host header.
	KindDomainNotFound

	// KindLinkNotFound means the domain is known but the path is not.
	KindLinkNotFound

	// KindNoActiveTarget means the link exists but every target is disabled.
	KindNoActiveTarget
)

// String returns a short name for logging.
func (k OutcomeKind) String() string {
	switch k {
	case KindRedirect:
		return "redirect"
	case KindSiteRoot:
		return "site-root"
	case KindDomainNotFound:
		return "domain-not-found"
	case KindLinkNotFound:
		return "link-not-found"
	case KindNoActiveTarget:
		return "no-active-destination"
	default:
		return "unknown"
	}
}

// Outcome is the result of one resolution. Target is set only for
// KindRedirect.
type Outcome struct {
	Kind   OutcomeKind
	Target string
}

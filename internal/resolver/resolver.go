package resolver

import (
	"context"
	"errors"
	"time"

	"link-router/internal/cache"
	"link-router/internal/domain"
	"link-router/internal/repository"
	"link-router/internal/selector"
	"link-router/pkg/hostutil"
	"link-router/pkg/logger"
)

// ClickRecorder is the fire-and-forget sink for resolved redirects. The
// resolver hands an event off and moves on; nothing in the redirect path
// waits for the durable writes.
type ClickRecorder interface {
	Record(event domain.ClickEvent)
}

// Resolver turns an inbound (host header, path) pair into a redirect
// decision. Lookup order: domain cache, store, link cache, store — at most
// one store round-trip per cache miss, at most two per request. Misses are
// never negatively cached; every miss re-queries the store.
type Resolver struct {
	domains  *cache.DomainCache
	links    *cache.LinkCache
	store    repository.Store
	selector *selector.Selector
	recorder ClickRecorder
	logger   *logger.Logger
}

// New creates a resolver with all collaborators injected.
func New(
	domains *cache.DomainCache,
	links *cache.LinkCache,
	store repository.Store,
	sel *selector.Selector,
	recorder ClickRecorder,
	log *logger.Logger,
) *Resolver {
	return &Resolver{
		domains:  domains,
		links:    links,
		store:    store,
		selector: sel,
		recorder: recorder,
		logger:   log,
	}
}

// Resolve maps a request to one of the outcome kinds. Not-found conditions
// are outcome values; an error is returned only for store failures during a
// cache-populating read or for an internal contract violation.
func (r *Resolver) Resolve(ctx context.Context, hostHeader string, pathSegments []string, meta domain.RequestMeta) (domain.Outcome, error) {
	hostname := hostutil.NormalizeHost(hostHeader)
	shortPath := hostutil.JoinPath(pathSegments)

	// Empty path is the routed domain's root, not a short link.
	if shortPath == "" {
		return domain.Outcome{Kind: domain.KindSiteRoot}, nil
	}

	domainEntry, err := r.lookupDomain(ctx, hostname)
	if err != nil {
		if errors.Is(err, domain.ErrDomainNotFound) {
			return domain.Outcome{Kind: domain.KindDomainNotFound}, nil
		}
		return domain.Outcome{}, err
	}

	linkEntry, err := r.lookupLink(ctx, domainEntry.ID, shortPath)
	if err != nil {
		if errors.Is(err, domain.ErrLinkNotFound) {
			return domain.Outcome{Kind: domain.KindLinkNotFound}, nil
		}
		return domain.Outcome{}, err
	}

	active := domain.ActiveTargets(linkEntry.Targets)
	if len(active) == 0 {
		return domain.Outcome{Kind: domain.KindNoActiveTarget}, nil
	}

	target, err := r.selector.Pick(active)
	if err != nil {
		// Cannot happen with a non-empty active list; treat as internal.
		r.logger.Error("Selector rejected non-empty target list",
			"error", err,
			"link_id", linkEntry.ID,
		)
		return domain.Outcome{}, domain.NewInternalError(err)
	}

	// Synchronous cache-only bump so the next read of this entry already
	// reflects the click; the durable counter follows asynchronously.
	r.links.BumpClicks(domainEntry.ID, shortPath)

	r.recorder.Record(domain.ClickEvent{
		LinkID:    linkEntry.ID,
		DomainID:  domainEntry.ID,
		TargetURL: target,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		Referer:   meta.Referer,
		Timestamp: time.Now(),
	})

	return domain.Outcome{Kind: domain.KindRedirect, Target: target}, nil
}

// lookupDomain consults the domain cache and falls back to the store on a
// miss, populating the cache on success.
func (r *Resolver) lookupDomain(ctx context.Context, hostname string) (cache.DomainEntry, error) {
	if entry, ok := r.domains.Get(hostname); ok {
		return entry, nil
	}

	record, err := r.store.FindActiveDomain(ctx, hostname)
	if err != nil {
		if !errors.Is(err, domain.ErrDomainNotFound) {
			r.logger.Error("Domain lookup failed", "error", err, "hostname", hostname)
		}
		return cache.DomainEntry{}, err
	}

	r.domains.Set(hostname, record)

	entry, ok := r.domains.Get(hostname)
	if !ok {
		// Only possible if the entry expired between Set and Get; rebuild
		// from the record we just fetched.
		entry = cache.DomainEntry{
			ID:         record.ID,
			Hostname:   record.Hostname,
			IsActive:   record.IsActive,
			IsVerified: record.IsVerified,
		}
	}
	return entry, nil
}

// lookupLink consults the link cache and falls back to the store on a miss,
// populating the cache on success. Two concurrent misses may both hit the
// store; the second Set simply wins.
func (r *Resolver) lookupLink(ctx context.Context, domainID uint, shortPath string) (cache.LinkEntry, error) {
	if entry, ok := r.links.Get(domainID, shortPath); ok {
		return entry, nil
	}

	record, err := r.store.FindLink(ctx, domainID, shortPath)
	if err != nil {
		if !errors.Is(err, domain.ErrLinkNotFound) {
			r.logger.Error("Link lookup failed",
				"error", err,
				"domain_id", domainID,
				"short_path", shortPath,
			)
		}
		return cache.LinkEntry{}, err
	}

	r.links.Set(domainID, shortPath, record)

	entry, ok := r.links.Get(domainID, shortPath)
	if !ok {
		targets := make([]domain.Target, 0, len(record.TargetURLs))
		for _, t := range record.TargetURLs {
			targets = append(targets, domain.Target{URL: t.URL, Weight: t.Weight, IsActive: t.IsActive})
		}
		entry = cache.LinkEntry{
			ID:          record.ID,
			DomainID:    domainID,
			ShortPath:   shortPath,
			Targets:     targets,
			TotalClicks: record.TotalClicks,
		}
	}
	return entry, nil
}

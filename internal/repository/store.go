package repository

import (
	"context"

	"link-router/internal/domain"
)

// Store defines the persistent-store contract the router core depends on.
// The router treats the store as a black box with eventual durability; this
// interface allows swapping implementations (PostgreSQL, MySQL, MongoDB)
// and substituting test doubles without touching the resolution logic.
type Store interface {
	// FindActiveDomain retrieves the domain record for a normalized
	// hostname, considering only active domains. Returns
	// domain.ErrDomainNotFound when no such domain exists.
	FindActiveDomain(ctx context.Context, hostname string) (*domain.Domain, error)

	// FindLink retrieves a link by owning domain and short path, with its
	// target list. Returns domain.ErrLinkNotFound when absent.
	FindLink(ctx context.Context, domainID uint, shortPath string) (*domain.Link, error)

	// InsertClick persists one immutable click event.
	InsertClick(ctx context.Context, click *domain.Click) error

	// IncrementLinkStats bumps the link's durable click counter and
	// refreshes its last-used timestamp.
	IncrementLinkStats(ctx context.Context, linkID uint) error
}

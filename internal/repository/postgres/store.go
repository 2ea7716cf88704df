package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"link-router/internal/domain"
	"link-router/internal/repository"
)

// store implements the Store interface for PostgreSQL
type store struct {
	db *gorm.DB
}

// NewStore creates a new PostgreSQL-backed store
func NewStore(db *gorm.DB) repository.Store {
	return &store{db: db}
}

// FindActiveDomain retrieves an active domain by its normalized hostname.
// Inactive and unverified-but-active domains are treated alike here: only
// is_active gates resolution eligibility.
func (s *store) FindActiveDomain(ctx context.Context, hostname string) (*domain.Domain, error) {
	var d domain.Domain

	result := s.db.WithContext(ctx).
		Where("hostname = ? AND is_active = ?", hostname, true).
		First(&d)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDomainNotFound
		}
		return nil, domain.NewStoreError(result.Error)
	}

	return &d, nil
}

// FindLink retrieves a link by (domain id, short path), preloading its
// targets in their configured order so weighted selection is reproducible.
func (s *store) FindLink(ctx context.Context, domainID uint, shortPath string) (*domain.Link, error) {
	var l domain.Link

	result := s.db.WithContext(ctx).
		Preload("TargetURLs", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, id ASC")
		}).
		Where("domain_id = ? AND short_path = ?", domainID, shortPath).
		First(&l)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLinkNotFound
		}
		return nil, domain.NewStoreError(result.Error)
	}

	return &l, nil
}

// InsertClick persists one click event. Clicks are insert-only; nothing in
// the router mutates or deletes them.
func (s *store) InsertClick(ctx context.Context, click *domain.Click) error {
	if click.Timestamp.IsZero() {
		click.Timestamp = time.Now()
	}

	result := s.db.WithContext(ctx).Create(click)
	if result.Error != nil {
		return domain.NewStoreError(result.Error)
	}
	return nil
}

// IncrementLinkStats atomically increments the durable click counter and
// sets last_used. A SQL-side increment avoids the SELECT-then-UPDATE race
// between concurrent recorder workers.
func (s *store) IncrementLinkStats(ctx context.Context, linkID uint) error {
	now := time.Now()

	result := s.db.WithContext(ctx).
		Model(&domain.Link{}).
		Where("id = ?", linkID).
		Updates(map[string]interface{}{
			"total_clicks": gorm.Expr("total_clicks + ?", 1),
			"last_used":    now,
		})

	if result.Error != nil {
		return domain.NewStoreError(result.Error)
	}

	if result.RowsAffected == 0 {
		return domain.ErrLinkNotFound
	}

	return nil
}

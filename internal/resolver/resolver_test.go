package resolver_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"link-router/internal/cache"
	"link-router/internal/domain"
	"link-router/internal/resolver"
	"link-router/internal/selector"
	"link-router/pkg/logger"
)

// MockStore is a mock implementation of repository.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) FindActiveDomain(ctx context.Context, hostname string) (*domain.Domain, error) {
	args := m.Called(ctx, hostname)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Domain), args.Error(1)
}

func (m *MockStore) FindLink(ctx context.Context, domainID uint, shortPath string) (*domain.Link, error) {
	args := m.Called(ctx, domainID, shortPath)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

func (m *MockStore) InsertClick(ctx context.Context, click *domain.Click) error {
	args := m.Called(ctx, click)
	return args.Error(0)
}

func (m *MockStore) IncrementLinkStats(ctx context.Context, linkID uint) error {
	args := m.Called(ctx, linkID)
	return args.Error(0)
}

// captureRecorder collects events instead of persisting them.
type captureRecorder struct {
	mu     sync.Mutex
	events []domain.ClickEvent
}

func (r *captureRecorder) Record(event domain.ClickEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *captureRecorder) all() []domain.ClickEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.ClickEvent(nil), r.events...)
}

type resolverFixture struct {
	store    *MockStore
	domains  *cache.DomainCache
	links    *cache.LinkCache
	recorder *captureRecorder
	resolver *resolver.Resolver
}

func newFixture() *resolverFixture {
	store := new(MockStore)
	domains := cache.NewDomainCache(5 * time.Minute)
	links := cache.NewLinkCache(2 * time.Minute)
	rec := &captureRecorder{}
	sel := selector.New(rand.NewSource(1))
	res := resolver.New(domains, links, store, sel, rec, logger.NewLogger())

	return &resolverFixture{
		store:    store,
		domains:  domains,
		links:    links,
		recorder: rec,
		resolver: res,
	}
}

func activeDomain() *domain.Domain {
	return &domain.Domain{ID: 1, Hostname: "example.com", IsActive: true, IsVerified: true}
}

func promoLink() *domain.Link {
	return &domain.Link{
		ID:        10,
		DomainID:  1,
		ShortPath: "promo",
		TargetURLs: []domain.TargetURL{
			{URL: "https://a.test", Weight: 1, IsActive: true, Position: 0},
			{URL: "https://b.test", Weight: 0, IsActive: false, Position: 1},
		},
	}
}

func TestResolve_EndToEnd(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.store.On("FindActiveDomain", mock.Anything, "example.com").Return(activeDomain(), nil)
	f.store.On("FindLink", mock.Anything, uint(1), "promo").Return(promoLink(), nil)

	meta := domain.RequestMeta{IP: "203.0.113.9", UserAgent: "curl/8.0", Referer: "https://ref.test"}
	outcome, err := f.resolver.Resolve(ctx, "example.com", []string{"promo"}, meta)

	require.NoError(t, err)
	assert.Equal(t, domain.KindRedirect, outcome.Kind)
	// b.test is inactive, so the only active destination always wins.
	assert.Equal(t, "https://a.test", outcome.Target)

	events := f.recorder.all()
	require.Len(t, events, 1, "exactly one click scheduled")
	assert.Equal(t, uint(10), events[0].LinkID)
	assert.Equal(t, uint(1), events[0].DomainID)
	assert.Equal(t, "https://a.test", events[0].TargetURL)
	assert.Equal(t, "203.0.113.9", events[0].IP)
	assert.Equal(t, "curl/8.0", events[0].UserAgent)
	assert.Equal(t, "https://ref.test", events[0].Referer)

	f.store.AssertExpectations(t)
}

func TestResolve_HostNormalization(t *testing.T) {
	f := newFixture()

	f.store.On("FindActiveDomain", mock.Anything, "example.com").Return(activeDomain(), nil)
	f.store.On("FindLink", mock.Anything, uint(1), "promo").Return(promoLink(), nil)

	outcome, err := f.resolver.Resolve(context.Background(), "EXAMPLE.com:8080", []string{"promo"}, domain.RequestMeta{})

	require.NoError(t, err)
	assert.Equal(t, domain.KindRedirect, outcome.Kind)
	f.store.AssertExpectations(t)
}

func TestResolve_SiteRoot(t *testing.T) {
	f := newFixture()

	outcome, err := f.resolver.Resolve(context.Background(), "example.com", nil, domain.RequestMeta{})

	require.NoError(t, err)
	assert.Equal(t, domain.KindSiteRoot, outcome.Kind)
	f.store.AssertNotCalled(t, "FindActiveDomain", mock.Anything, mock.Anything)
}

func TestResolve_DomainNotFound(t *testing.T) {
	f := newFixture()

	f.store.On("FindActiveDomain", mock.Anything, "unknown.test").
		Return(nil, domain.ErrDomainNotFound)

	outcome, err := f.resolver.Resolve(context.Background(), "unknown.test", []string{"promo"}, domain.RequestMeta{})

	require.NoError(t, err)
	assert.Equal(t, domain.KindDomainNotFound, outcome.Kind)
	assert.Empty(t, f.recorder.all())
}

func TestResolve_LinkNotFound(t *testing.T) {
	f := newFixture()

	f.store.On("FindActiveDomain", mock.Anything, "example.com").Return(activeDomain(), nil)
	f.store.On("FindLink", mock.Anything, uint(1), "nope").Return(nil, domain.ErrLinkNotFound)

	outcome, err := f.resolver.Resolve(context.Background(), "example.com", []string{"nope"}, domain.RequestMeta{})

	require.NoError(t, err)
	assert.Equal(t, domain.KindLinkNotFound, outcome.Kind)
	assert.Empty(t, f.recorder.all())
}

func TestResolve_NoActiveDestination(t *testing.T) {
	f := newFixture()

	link := promoLink()
	for i := range link.TargetURLs {
		link.TargetURLs[i].IsActive = false
	}

	f.store.On("FindActiveDomain", mock.Anything, "example.com").Return(activeDomain(), nil)
	f.store.On("FindLink", mock.Anything, uint(1), "promo").Return(link, nil)

	outcome, err := f.resolver.Resolve(context.Background(), "example.com", []string{"promo"}, domain.RequestMeta{})

	require.NoError(t, err)
	assert.Equal(t, domain.KindNoActiveTarget, outcome.Kind)
	assert.Empty(t, f.recorder.all())
}

func TestResolve_StoreFailureIsNotNotFound(t *testing.T) {
	f := newFixture()

	f.store.On("FindActiveDomain", mock.Anything, "example.com").
		Return(nil, domain.NewStoreError(errors.New("connection refused")))

	_, err := f.resolver.Resolve(context.Background(), "example.com", []string{"promo"}, domain.RequestMeta{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreUnavailable))
	assert.False(t, errors.Is(err, domain.ErrDomainNotFound))
}

func TestResolve_SecondHitServedFromCache(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.store.On("FindActiveDomain", mock.Anything, "example.com").Return(activeDomain(), nil).Once()
	f.store.On("FindLink", mock.Anything, uint(1), "promo").Return(promoLink(), nil).Once()

	_, err := f.resolver.Resolve(ctx, "example.com", []string{"promo"}, domain.RequestMeta{})
	require.NoError(t, err)

	// A second resolution within the TTL must not touch the store again.
	outcome, err := f.resolver.Resolve(ctx, "example.com", []string{"promo"}, domain.RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, domain.KindRedirect, outcome.Kind)

	f.store.AssertNumberOfCalls(t, "FindActiveDomain", 1)
	f.store.AssertNumberOfCalls(t, "FindLink", 1)
	assert.Len(t, f.recorder.all(), 2)
}

func TestResolve_MissIsNotNegativelyCached(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.store.On("FindActiveDomain", mock.Anything, "unknown.test").
		Return(nil, domain.ErrDomainNotFound)

	for i := 0; i < 3; i++ {
		outcome, err := f.resolver.Resolve(ctx, "unknown.test", []string{"promo"}, domain.RequestMeta{})
		require.NoError(t, err)
		assert.Equal(t, domain.KindDomainNotFound, outcome.Kind)
	}

	// Every miss re-queries the store.
	f.store.AssertNumberOfCalls(t, "FindActiveDomain", 3)
}

func TestResolve_BumpsCachedClickCounter(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.store.On("FindActiveDomain", mock.Anything, "example.com").Return(activeDomain(), nil).Once()
	f.store.On("FindLink", mock.Anything, uint(1), "promo").Return(promoLink(), nil).Once()

	for i := 0; i < 3; i++ {
		_, err := f.resolver.Resolve(ctx, "example.com", []string{"promo"}, domain.RequestMeta{})
		require.NoError(t, err)
	}

	entry, ok := f.links.Get(1, "promo")
	require.True(t, ok)
	assert.Equal(t, int64(3), entry.TotalClicks)
}

func TestResolve_MultiSegmentPath(t *testing.T) {
	f := newFixture()

	f.store.On("FindActiveDomain", mock.Anything, "example.com").Return(activeDomain(), nil)
	f.store.On("FindLink", mock.Anything, uint(1), "spring/sale").Return(nil, domain.ErrLinkNotFound)

	outcome, err := f.resolver.Resolve(context.Background(), "example.com", []string{"spring", "sale"}, domain.RequestMeta{})

	require.NoError(t, err)
	assert.Equal(t, domain.KindLinkNotFound, outcome.Kind)
	f.store.AssertExpectations(t)
}

package selector

import (
	"math/rand"
	"sync"

	"link-router/internal/domain"
)

// Selector picks one destination from a weighted set. It is a pure function
// of its input and the random source; injecting the source makes selection
// reproducible in tests.
//
// Policy for degenerate inputs: an empty list is a caller error
// (domain.ErrNoTargets — the resolver filters before calling), and a list
// whose total weight is zero or negative is treated as uniform, every entry
// counting as weight 1. Selection never silently collapses to the first
// entry.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a selector backed by the given random source.
func New(src rand.Source) *Selector {
	return &Selector{rng: rand.New(src)}
}

// Pick returns the URL of one destination, chosen with probability
// proportional to its weight. Callers must pass a non-empty list of active
// targets.
func (s *Selector) Pick(targets []domain.Target) (string, error) {
	if len(targets) == 0 {
		return "", domain.ErrNoTargets
	}

	// Single destination needs no draw.
	if len(targets) == 1 {
		return targets[0].URL, nil
	}

	var total int64
	for _, t := range targets {
		if t.Weight > 0 {
			total += int64(t.Weight)
		}
	}

	// All weights zero (or negative): uniform fallback.
	if total <= 0 {
		return targets[s.draw(int64(len(targets)))].URL, nil
	}

	// Standard alias-free weighted pick: draw r in [0, total) and return the
	// first entry whose cumulative weight exceeds r. Half-open convention,
	// so a weight-0 entry in a mixed list is never selected.
	r := s.draw(total)
	var cum int64
	for _, t := range targets {
		if t.Weight <= 0 {
			continue
		}
		cum += int64(t.Weight)
		if r < cum {
			return t.URL, nil
		}
	}

	// Unreachable while the accumulation above matches the draw bound.
	return targets[len(targets)-1].URL, nil
}

// draw returns a uniform value in [0, n). rand.Rand is not safe for
// concurrent use, so the draw is serialized.
func (s *Selector) draw(n int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Int63n(n)
}

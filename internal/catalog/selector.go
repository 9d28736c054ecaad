package catalog

import (
	"math/rand/v2"
	"sync"

	"lockbox/internal/domain"
)

// Selector samples locks from a catalog. It is safe for concurrent use
type Selector struct {
	catalog *Catalog

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSelector creates a selector drawing randomness from rng. A nil rng uses a
// randomly seeded source
func NewSelector(c *Catalog, rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Selector{catalog: c, rng: rng}
}

// Catalog returns the catalog the selector draws from
func (s *Selector) Catalog() *Catalog {
	return s.catalog
}

// KeyFor returns the key paired with a content item
func (s *Selector) KeyFor(contentID int) (domain.KeyItem, bool) {
	return s.catalog.KeyFor(contentID)
}

// Has reports whether pack can be drawn from
func (s *Selector) Has(pack string) bool {
	return s.catalog.Has(pack)
}

// SelectLocks returns up to count items of pack carrying none of the excluded
// tags, in random order. The mixed pack draws from every pack. A pool smaller
// than count yields every available item; an unknown pack yields none
func (s *Selector) SelectLocks(pack string, excludedTags []string, count int) []domain.ContentItem {
	if pack == domain.MixedPack {
		return s.SelectMixedLocks(excludedTags, count)
	}
	items, ok := s.catalog.Pack(pack)
	if !ok {
		return []domain.ContentItem{}
	}
	return s.sample(items, excludedTags, count)
}

// SelectMixedLocks samples from the union of all packs
func (s *Selector) SelectMixedLocks(excludedTags []string, count int) []domain.ContentItem {
	return s.sample(s.catalog.All(), excludedTags, count)
}

func (s *Selector) sample(items []domain.ContentItem, excludedTags []string, count int) []domain.ContentItem {
	if count <= 0 {
		return []domain.ContentItem{}
	}

	excluded := make(map[string]bool, len(excludedTags))
	for _, t := range excludedTags {
		excluded[t] = true
	}

	pool := make([]domain.ContentItem, 0, len(items))
	for _, it := range items {
		if !it.HasAnyTag(excluded) {
			pool = append(pool, it)
		}
	}

	s.mu.Lock()
	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	s.mu.Unlock()

	if len(pool) > count {
		pool = pool[:count]
	}
	return pool
}

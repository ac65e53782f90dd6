package analyzer

import (
	"context"
	"sync"
	"sync/atomic"
)

// ProfileStore holds the per league statistics shared by every analysis.
// Get never blocks; Update and Save are serialised per store.
type ProfileStore interface {
	Load(ctx context.Context) (map[LeagueID]LeagueProfile, error)
	Save(ctx context.Context, profiles map[LeagueID]LeagueProfile) error
	Get(league LeagueID) LeagueProfile
	Update(ctx context.Context, league LeagueID, delta ProfileDelta) (LeagueProfile, error)
	Close() error
}

// snapshot is an immutable view of every profile. A new one replaces the old
// one wholesale on each write.
type snapshot map[LeagueID]LeagueProfile

// copyProfiles fills in any missing leagues and detaches from the caller's map
func copyProfiles(in map[LeagueID]LeagueProfile) snapshot {
	out := snapshot(emptyProfiles())
	for l, p := range in {
		p.League = l
		out[l] = p
	}
	return out
}

// profileCache is the shared in process half of every store
type profileCache struct {
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
}

func (c *profileCache) init() {
	s := snapshot(emptyProfiles())
	c.current.Store(&s)
}

func (c *profileCache) get(league LeagueID) LeagueProfile {
	s := c.current.Load()
	if s == nil {
		return LeagueProfile{League: league}
	}
	if p, ok := (*s)[league]; ok {
		return p
	}
	return LeagueProfile{League: league}
}

func (c *profileCache) all() map[LeagueID]LeagueProfile {
	s := c.current.Load()
	if s == nil {
		return emptyProfiles()
	}
	return copyProfiles(*s)
}

// swap installs profiles as the new snapshot. Callers hold mu.
func (c *profileCache) swap(profiles map[LeagueID]LeagueProfile) {
	s := copyProfiles(profiles)
	c.current.Store(&s)
}

// MemoryStore keeps profiles in process only. Used by tests and for dry runs.
type MemoryStore struct {
	cache profileCache
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{}
	s.cache.init()
	return s
}

var _ ProfileStore = (*MemoryStore)(nil)

func (s *MemoryStore) Load(ctx context.Context) (map[LeagueID]LeagueProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StoreIOError{Op: "load", Err: err}
	}
	return s.cache.all(), nil
}

func (s *MemoryStore) Save(ctx context.Context, profiles map[LeagueID]LeagueProfile) error {
	if err := ctx.Err(); err != nil {
		return &StoreIOError{Op: "save", Err: err}
	}
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			return &StoreIOError{Op: "save", Err: err}
		}
	}
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	s.cache.swap(profiles)
	return nil
}

func (s *MemoryStore) Get(league LeagueID) LeagueProfile {
	return s.cache.get(league)
}

func (s *MemoryStore) Update(ctx context.Context, league LeagueID, delta ProfileDelta) (LeagueProfile, error) {
	if err := delta.validate(); err != nil {
		return s.Get(league), &StoreIOError{Op: "update", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return s.Get(league), &StoreIOError{Op: "update", Err: err}
	}
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()

	profiles := s.cache.all()
	updated := profiles[league].Apply(delta)
	profiles[league] = updated
	s.cache.swap(profiles)
	return updated, nil
}

func (s *MemoryStore) Close() error {
	return nil
}

package stores

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// CollectionState is an immutable snapshot of every collection and the current selection.
type CollectionState struct {
	Collections []models.Collection
	CurrentID   string
}

// Find returns the collection with id.
func (s CollectionState) Find(id string) (models.Collection, bool) {
	if i := s.index(id); i >= 0 {
		return s.Collections[i], true
	}
	return models.Collection{}, false
}

// Current resolves the selected collection from the list.
func (s CollectionState) Current() (models.Collection, bool) {
	if s.CurrentID == "" {
		return models.Collection{}, false
	}
	return s.Find(s.CurrentID)
}

func (s CollectionState) index(id string) int {
	for i, c := range s.Collections {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// NewCollection is the input to [CollectionStore.Create].
type NewCollection struct {
	OwnerID     string `json:"userId" validate:"required"`
	Name        string `json:"name" validate:"max=100"`
	Description string `json:"description" validate:"max=500"`
	IsPublic    bool   `json:"isPublic"`
}

// CollectionPatch holds the fields to change in [CollectionStore.Update]. Nil fields are left alone.
type CollectionPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"isPublic,omitempty"`
}

// CollectionStats summarizes every collection for the admin dashboard.
type CollectionStats struct {
	Collections    int            `json:"collections"`
	Public         int            `json:"public"`
	Private        int            `json:"private"`
	Entries        int            `json:"entries"`
	DistinctMovies int            `json:"distinctMovies"`
	AverageMovies  int            `json:"averageMovies"`
	ByOwner        map[string]int `json:"byOwner"`
	TopGenres      []string       `json:"topGenres"`
}

// Clock returns the current time.
type Clock func() time.Time

// CollectionOption configures a [CollectionStore].
type CollectionOption func(*CollectionStore)

// WithClock replaces [time.Now] as the timestamp source.
func WithClock(c Clock) CollectionOption {
	return func(s *CollectionStore) { s.now = c }
}

// WithIDGenerator replaces [shared.GenerateID] for new collection ids.
func WithIDGenerator(fn func() string) CollectionOption {
	return func(s *CollectionStore) { s.newID = fn }
}

// WithCollections starts the store with cs instead of an empty list.
func WithCollections(cs []models.Collection) CollectionOption {
	return func(s *CollectionStore) {
		seeded := make([]models.Collection, len(cs))
		for i, c := range cs {
			seeded[i] = c.Clone()
		}
		s.state.Store(&CollectionState{Collections: seeded})
	}
}

// CollectionStore owns the watchlists.
//
// Reads load the latest snapshot without locking. Mutations are serialized, build a new snapshot,
// swap it in whole and then notify subscribers, so readers see either the old or the new list and never a partial one.
// Operations on an unknown id are no-ops.
type CollectionStore struct {
	state     atomic.Pointer[CollectionState]
	writeMu   sync.Mutex
	now       Clock
	newID     func() string
	observers broadcaster[CollectionState]
}

// NewCollectionStore creates an empty store.
func NewCollectionStore(opts ...CollectionOption) *CollectionStore {
	s := &CollectionStore{now: time.Now, newID: shared.GenerateID}
	s.state.Store(&CollectionState{})
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state. The returned value must be treated as read-only.
func (s *CollectionStore) Snapshot() CollectionState {
	return *s.state.Load()
}

// Subscribe registers fn to receive every new snapshot after a mutation is applied.
//
// fn runs on the mutating goroutine and must not call a mutating method synchronously.
func (s *CollectionStore) Subscribe(fn func(CollectionState)) (unsubscribe func()) {
	return s.observers.subscribe(fn)
}

// Create validates the input and appends a new empty collection.
//
// A blank name returns [shared.ErrInvalidName]; a blank owner returns [shared.ErrValidation].
func (s *CollectionStore) Create(in NewCollection) (models.Collection, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.OwnerID = strings.TrimSpace(in.OwnerID)
	if in.Name == "" {
		return models.Collection{}, shared.ErrInvalidName
	}
	if err := shared.Validate(in); err != nil {
		return models.Collection{}, err
	}

	var created models.Collection
	s.mutate(func(cur CollectionState) (CollectionState, bool) {
		now := s.now()
		created = models.Collection{
			ID:          s.uniqueID(cur),
			Name:        in.Name,
			Description: in.Description,
			OwnerID:     in.OwnerID,
			IsPublic:    in.IsPublic,
			Movies:      []models.Movie{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		next := cur
		next.Collections = make([]models.Collection, len(cur.Collections), len(cur.Collections)+1)
		copy(next.Collections, cur.Collections)
		next.Collections = append(next.Collections, created)
		return next, true
	})

	return created, nil
}

// Update merges patch into the collection with id and refreshes its updatedAt.
//
// An unknown id is a no-op. A blank name for a known id returns [shared.ErrInvalidName] and changes nothing.
func (s *CollectionStore) Update(id string, patch CollectionPatch) error {
	var err error
	s.mutate(func(cur CollectionState) (CollectionState, bool) {
		i := cur.index(id)
		if i < 0 {
			return cur, false
		}

		c := cur.Collections[i]
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				err = shared.ErrInvalidName
				return cur, false
			}
			c.Name = name
		}
		if patch.Description != nil {
			c.Description = *patch.Description
		}
		if patch.IsPublic != nil {
			c.IsPublic = *patch.IsPublic
		}
		c.UpdatedAt = s.stamp(c.UpdatedAt)

		return cur.replace(i, c), true
	})

	return err
}

// Delete removes the collection with id and clears the selection if it was current.
func (s *CollectionStore) Delete(id string) {
	s.mutate(func(cur CollectionState) (CollectionState, bool) {
		i := cur.index(id)
		if i < 0 {
			return cur, false
		}

		next := cur
		next.Collections = make([]models.Collection, 0, len(cur.Collections)-1)
		next.Collections = append(next.Collections, cur.Collections[:i]...)
		next.Collections = append(next.Collections, cur.Collections[i+1:]...)
		if next.CurrentID == id {
			next.CurrentID = ""
		}
		return next, true
	})
}

// AddMovie appends movie to the collection. Adding a movie already present changes nothing.
func (s *CollectionStore) AddMovie(id string, movie models.Movie) {
	s.mutate(func(cur CollectionState) (CollectionState, bool) {
		i := cur.index(id)
		if i < 0 {
			return cur, false
		}

		c, changed := cur.Collections[i].WithMovie(movie)
		if !changed {
			return cur, false
		}
		c.UpdatedAt = s.stamp(c.UpdatedAt)

		return cur.replace(i, c), true
	})
}

// RemoveMovie drops movieID from the collection. updatedAt is refreshed only when a movie was removed.
func (s *CollectionStore) RemoveMovie(id string, movieID int) {
	s.mutate(func(cur CollectionState) (CollectionState, bool) {
		i := cur.index(id)
		if i < 0 {
			return cur, false
		}

		c, changed := cur.Collections[i].WithoutMovie(movieID)
		if !changed {
			return cur, false
		}
		c.UpdatedAt = s.stamp(c.UpdatedAt)

		return cur.replace(i, c), true
	})
}

// SetCurrent selects the collection with id. An empty or unknown id clears the selection.
func (s *CollectionStore) SetCurrent(id string) {
	s.mutate(func(cur CollectionState) (CollectionState, bool) {
		if cur.index(id) < 0 {
			id = ""
		}
		if cur.CurrentID == id {
			return cur, false
		}

		next := cur
		next.CurrentID = id
		return next, true
	})
}

// Find returns a copy of the collection with id.
func (s *CollectionStore) Find(id string) (models.Collection, bool) {
	c, ok := s.Snapshot().Find(id)
	if !ok {
		return models.Collection{}, false
	}
	return c.Clone(), true
}

// Current returns a copy of the selected collection.
func (s *CollectionStore) Current() (models.Collection, bool) {
	c, ok := s.Snapshot().Current()
	if !ok {
		return models.Collection{}, false
	}
	return c.Clone(), true
}

// ListByOwner returns the collections owned by ownerID in insertion order.
func (s *CollectionStore) ListByOwner(ownerID string) []models.Collection {
	return s.filter(func(c models.Collection) bool { return c.OwnerID == ownerID })
}

// ListPublic returns the public collections in insertion order.
func (s *CollectionStore) ListPublic() []models.Collection {
	return s.filter(func(c models.Collection) bool { return c.IsPublic })
}

// All returns every collection in insertion order.
func (s *CollectionStore) All() []models.Collection {
	return s.filter(func(models.Collection) bool { return true })
}

// Stats computes dashboard totals over the current snapshot.
func (s *CollectionStore) Stats() CollectionStats {
	snap := s.Snapshot()
	stats := CollectionStats{
		Collections: len(snap.Collections),
		ByOwner:     make(map[string]int),
		TopGenres:   []string{},
	}

	seen := make(map[int]bool)
	genres := make(map[string]int)
	for _, c := range snap.Collections {
		if c.IsPublic {
			stats.Public++
		} else {
			stats.Private++
		}
		stats.ByOwner[c.OwnerID]++
		stats.Entries += len(c.Movies)

		for _, m := range c.Movies {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			for _, g := range m.Genres {
				genres[g.Name]++
			}
		}
	}

	stats.DistinctMovies = len(seen)
	stats.AverageMovies = int(math.Round(float64(stats.Entries) / math.Max(float64(stats.Collections), 1)))

	for name := range genres {
		stats.TopGenres = append(stats.TopGenres, name)
	}
	sort.Slice(stats.TopGenres, func(i, j int) bool {
		a, b := stats.TopGenres[i], stats.TopGenres[j]
		if genres[a] != genres[b] {
			return genres[a] > genres[b]
		}
		return a < b
	})
	if len(stats.TopGenres) > 5 {
		stats.TopGenres = stats.TopGenres[:5]
	}

	return stats
}

func (s *CollectionStore) filter(keep func(models.Collection) bool) []models.Collection {
	snap := s.Snapshot()
	out := []models.Collection{}
	for _, c := range snap.Collections {
		if keep(c) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// mutate applies fn to the latest snapshot under the write lock.
// When fn reports a change, the new snapshot is stored and published.
func (s *CollectionStore) mutate(fn func(cur CollectionState) (CollectionState, bool)) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next, changed := fn(s.Snapshot())
	if !changed {
		return
	}
	s.state.Store(&next)
	s.observers.publish(next)
}

// stamp returns the clock's time, or prev when the clock reads earlier than prev.
func (s *CollectionStore) stamp(prev time.Time) time.Time {
	now := s.now()
	if now.Before(prev) {
		return prev
	}
	return now
}

func (s *CollectionStore) uniqueID(cur CollectionState) string {
	for attempt := 0; ; attempt++ {
		id := s.newID()
		if cur.index(id) < 0 {
			return id
		}
		if attempt > 8 {
			return fmt.Sprintf("%s-%d", id, s.now().UnixNano())
		}
	}
}

// replace returns a copy of s with the collection at i swapped for c.
func (s CollectionState) replace(i int, c models.Collection) CollectionState {
	next := s
	next.Collections = make([]models.Collection, len(s.Collections))
	copy(next.Collections, s.Collections)
	next.Collections[i] = c
	return next
}

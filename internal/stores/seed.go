package stores

import (
	"time"

	"github.com/desertthunder/marquee/internal/models"
)

// Owner ids of the demo accounts the seed lists belong to.
const (
	DemoOwnerID  = "1"
	AdminOwnerID = "2"
)

// SeedCollections returns the demo watchlists stamped with now.
func SeedCollections(now time.Time) []models.Collection {
	seed := []models.Collection{
		{ID: "w1", Name: "Favorites", Description: "My all-time favorite movies", OwnerID: DemoOwnerID, IsPublic: true},
		{ID: "w2", Name: "Watch Later", Description: "Movies I want to watch soon", OwnerID: DemoOwnerID, IsPublic: false},
		{ID: "w3", Name: "Staff Picks", Description: "Recommended by our team", OwnerID: AdminOwnerID, IsPublic: true},
	}
	for i := range seed {
		seed[i].Movies = []models.Movie{}
		seed[i].CreatedAt = now
		seed[i].UpdatedAt = now
	}
	return seed
}

// NewSeededCollectionStore creates a store holding [SeedCollections] stamped with the configured clock.
func NewSeededCollectionStore(opts ...CollectionOption) *CollectionStore {
	s := NewCollectionStore(opts...)
	WithCollections(SeedCollections(s.now()))(s)
	return s
}

// package models defines the data model for movie discovery and watchlists
package models

import (
	"time"
)

// Model defines the base interface for persistent models.
// Implementations include [Account].
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Identity is the profile of the person using the application.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
	IsAdmin  bool   `json:"isAdmin"`
}

// Collection is a named, owned watchlist of distinct movies.
//
// Values handed out by the stores share their Movies backing array with the store's snapshot and must be treated as read-only; use [Collection.Clone] before modifying.
type Collection struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     string    `json:"userId"`
	IsPublic    bool      `json:"isPublic"`
	Movies      []Movie   `json:"movies"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// HasMovie reports whether a movie with movieID is in the collection.
func (c Collection) HasMovie(movieID int) bool {
	return c.indexOf(movieID) >= 0
}

func (c Collection) indexOf(movieID int) int {
	for i, m := range c.Movies {
		if m.ID == movieID {
			return i
		}
	}
	return -1
}

// Clone returns a copy whose Movies slice does not alias c's.
func (c Collection) Clone() Collection {
	out := c
	out.Movies = make([]Movie, len(c.Movies))
	copy(out.Movies, c.Movies)
	return out
}

// WithMovie returns a copy of c with m appended, or c unchanged and false when m is already present.
func (c Collection) WithMovie(m Movie) (Collection, bool) {
	if c.HasMovie(m.ID) {
		return c, false
	}
	out := c
	out.Movies = make([]Movie, len(c.Movies), len(c.Movies)+1)
	copy(out.Movies, c.Movies)
	out.Movies = append(out.Movies, m)
	return out, true
}

// WithoutMovie returns a copy of c without movieID, or c unchanged and false when it was absent.
func (c Collection) WithoutMovie(movieID int) (Collection, bool) {
	if c.indexOf(movieID) < 0 {
		return c, false
	}
	out := c
	out.Movies = make([]Movie, 0, len(c.Movies))
	for _, m := range c.Movies {
		if m.ID != movieID {
			out.Movies = append(out.Movies, m)
		}
	}
	return out, true
}

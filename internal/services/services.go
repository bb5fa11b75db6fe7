// package services defines interface Catalog for reading movie listings from an HTTP API
//
// TMDB
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// Catalog is a read-only movie catalog.
//
// Non-success responses, transport failures and undecodable bodies are reported as errors wrapping [shared.ErrUpstream].
type Catalog interface {
	// ListByCategory returns one page of a curated listing. Page numbers below 1 are treated as 1.
	ListByCategory(ctx context.Context, category models.Category, page int) (models.MoviePage, error)

	// Details returns a movie with its genres, runtime, videos, credits and recommendations.
	// An id the provider does not know returns [shared.ErrNotFound].
	Details(ctx context.Context, movieID int) (models.MovieDetails, error)

	// Search returns one page of movies matching query. A blank query returns [shared.ErrValidation] without a request.
	Search(ctx context.Context, query string, page int) (models.MoviePage, error)

	// Genres returns the provider's movie genre list.
	Genres(ctx context.Context) ([]models.Genre, error)
}

// APIError is a non-success response from the catalog provider.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", shared.ErrUpstream, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: status %d (%s)", shared.ErrUpstream, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap lets callers match the error with [errors.Is](err, [shared.ErrUpstream]).
func (e *APIError) Unwrap() error {
	return shared.ErrUpstream
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

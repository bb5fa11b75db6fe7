// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// MockCatalog is a test double for services.Catalog.
//
// Unknown categories return an empty page; unknown movie ids return [shared.ErrNotFound].
// Err, when set, is returned by every call.
type MockCatalog struct {
	Pages         map[models.Category]models.MoviePage
	Movies        map[int]models.MovieDetails
	SearchResults models.MoviePage
	GenreList     []models.Genre
	Err           error

	mu    sync.Mutex
	calls []string
}

func (m *MockCatalog) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

// Calls returns the calls made so far, formatted as "Method(args)".
func (m *MockCatalog) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

func (m *MockCatalog) ListByCategory(ctx context.Context, category models.Category, page int) (models.MoviePage, error) {
	m.record(fmt.Sprintf("ListByCategory(%s,%d)", category, page))
	if m.Err != nil {
		return models.MoviePage{}, m.Err
	}
	p, ok := m.Pages[category]
	if !ok {
		return models.MoviePage{Page: page, Results: []models.Movie{}}, nil
	}
	return p, nil
}

func (m *MockCatalog) Details(ctx context.Context, movieID int) (models.MovieDetails, error) {
	m.record(fmt.Sprintf("Details(%d)", movieID))
	if m.Err != nil {
		return models.MovieDetails{}, m.Err
	}
	d, ok := m.Movies[movieID]
	if !ok {
		return models.MovieDetails{}, fmt.Errorf("%w: movie %d", shared.ErrNotFound, movieID)
	}
	return d, nil
}

func (m *MockCatalog) Search(ctx context.Context, query string, page int) (models.MoviePage, error) {
	m.record(fmt.Sprintf("Search(%s,%d)", query, page))
	if m.Err != nil {
		return models.MoviePage{}, m.Err
	}
	return m.SearchResults, nil
}

func (m *MockCatalog) Genres(ctx context.Context) ([]models.Genre, error) {
	m.record("Genres()")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.GenreList, nil
}

// MockSlot is an in-memory identity slot with injectable failures.
type MockSlot struct {
	LoadErr  error
	SaveErr  error
	ClearErr error

	mu       sync.Mutex
	identity *models.Identity
	saves    int
	clears   int
}

// NewMockSlot creates a [MockSlot], optionally holding identity.
func NewMockSlot(identity *models.Identity) *MockSlot {
	return &MockSlot{identity: identity}
}

func (s *MockSlot) Load(ctx context.Context) (models.Identity, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return models.Identity{}, false, s.LoadErr
	}
	if s.identity == nil {
		return models.Identity{}, false, nil
	}
	return *s.identity, true, nil
}

func (s *MockSlot) Save(ctx context.Context, identity models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.saves++
	s.identity = &identity
	return nil
}

func (s *MockSlot) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clears++
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.identity = nil
	return nil
}

// Stored returns the held identity, if any.
func (s *MockSlot) Stored() (models.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

// Saves returns how many times Save succeeded.
func (s *MockSlot) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// Clears returns how many times Clear was called.
func (s *MockSlot) Clears() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clears
}

// SampleMovie returns a catalog movie with one genre and a runtime.
func SampleMovie(id int, title string) models.Movie {
	runtime := 120
	return models.Movie{
		ID:          id,
		Title:       title,
		Overview:    title + " overview",
		PosterPath:  fmt.Sprintf("/poster%d.jpg", id),
		ReleaseDate: "1999-03-31",
		VoteAverage: 8.2,
		Genres:      []models.Genre{{ID: 28, Name: "Action"}},
		Runtime:     &runtime,
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

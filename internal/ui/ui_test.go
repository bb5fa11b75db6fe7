package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/marquee/internal/auth"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/stores"
	"github.com/desertthunder/marquee/internal/tasks"
	tu "github.com/desertthunder/marquee/internal/testing"
)

type harness struct {
	m           *Model
	session     *stores.SessionStore
	collections *stores.CollectionStore
	catalog     *tu.MockCatalog
	opened      []string
	pending     []tea.Msg
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	authenticator, err := auth.NewMemory(auth.DemoAccounts(), auth.WithCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("failed to create authenticator: %v", err)
	}

	matrix := tu.SampleMovie(603, "The Matrix")
	alien := tu.SampleMovie(348, "Alien")
	catalog := &tu.MockCatalog{
		Pages: map[models.Category]models.MoviePage{
			models.CategoryTrending: {Page: 1, Results: []models.Movie{matrix, alien}, TotalPages: 1, TotalResults: 2},
			models.CategoryPopular:  {Page: 1, Results: []models.Movie{alien}, TotalPages: 1, TotalResults: 1},
		},
		Movies:        map[int]models.MovieDetails{603: {Movie: matrix, Tagline: "Welcome to the Real World."}},
		SearchResults: models.MoviePage{Page: 1, Results: []models.Movie{matrix}, TotalPages: 1, TotalResults: 1},
	}

	h := &harness{
		session:     stores.NewSessionStore(authenticator, tu.NewMockSlot(nil)),
		collections: stores.NewSeededCollectionStore(),
		catalog:     catalog,
	}
	h.m = NewModel(context.Background(), Deps{
		Catalog:     catalog,
		Engine:      tasks.NewEngine(catalog, h.collections, tasks.WithLogger(log.New(io.Discard))),
		Session:     h.session,
		Collections: h.collections,
		Images:      services.NewImages(""),
		OpenURL: func(url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
	})
	unsubscribe := h.m.Subscribe(func(msg tea.Msg) { h.pending = append(h.pending, msg) })
	t.Cleanup(unsubscribe)
	return h
}

// run executes cmd and feeds its message, plus any store notifications it triggered, back into the model.
func (h *harness) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	h.flush()
	if msg != nil {
		h.m.Update(msg)
	}
}

func (h *harness) flush() {
	for len(h.pending) > 0 {
		msg := h.pending[0]
		h.pending = h.pending[1:]
		h.m.Update(msg)
	}
}

func (h *harness) press(k string) tea.Cmd {
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		msg = tea.KeyMsg{Type: tea.KeyShiftTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	_, cmd := h.m.Update(msg)
	return cmd
}

func (h *harness) loadFeed(t *testing.T) {
	t.Helper()
	h.run(t, h.m.Init())
}

func (h *harness) signIn(t *testing.T, email, password string) {
	t.Helper()
	h.press("i")
	h.press(email)
	h.press("tab")
	h.press(password)
	h.run(t, h.press("enter"))
}

func TestHome(t *testing.T) {
	t.Run("Init Loads Feed", func(t *testing.T) {
		h := newHarness(t)
		h.loadFeed(t)

		if h.m.loading {
			t.Error("expected loading to finish")
		}
		if h.m.feed == nil || len(h.m.feed.Rows) != 4 {
			t.Fatalf("expected 4 feed rows, got %+v", h.m.feed)
		}
		if got := len(h.m.movies.Items()); got != 2 {
			t.Errorf("expected trending row with 2 movies, got %d", got)
		}
		if h.m.movies.Title != "Trending Now" {
			t.Errorf("unexpected row title %q", h.m.movies.Title)
		}
	})

	t.Run("Tabs Cycle Rows", func(t *testing.T) {
		h := newHarness(t)
		h.loadFeed(t)

		h.press("tab")
		if h.m.row != 1 || h.m.movies.Title != "Popular Movies" {
			t.Errorf("expected popular row, got %d %q", h.m.row, h.m.movies.Title)
		}
		h.press("shift+tab")
		h.press("shift+tab")
		if h.m.row != 3 || h.m.movies.Title != "Upcoming" {
			t.Errorf("expected wrap to upcoming, got %d %q", h.m.row, h.m.movies.Title)
		}
	})

	t.Run("Feed Failure", func(t *testing.T) {
		h := newHarness(t)
		h.catalog.Err = shared.ErrUpstream
		h.loadFeed(t)

		if !errors.Is(h.m.err, shared.ErrUpstream) {
			t.Errorf("expected upstream error, got %v", h.m.err)
		}
		if !strings.Contains(h.m.View(), "Error:") {
			t.Error("expected error in view")
		}
	})

	t.Run("No Catalog", func(t *testing.T) {
		h := newHarness(t)
		h.m.deps.Catalog = nil
		if cmd := h.m.Init(); cmd != nil {
			t.Error("expected no command without a catalog")
		}
		if !strings.Contains(h.m.status, "TMDB_API_KEY") {
			t.Errorf("unexpected status %q", h.m.status)
		}
		h.press("/")
		if h.m.view != HomeView {
			t.Error("search should stay closed without a catalog")
		}
	})

	t.Run("Quit", func(t *testing.T) {
		h := newHarness(t)
		cmd := h.press("q")
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})

	t.Run("Open In Browser", func(t *testing.T) {
		h := newHarness(t)
		h.loadFeed(t)
		h.run(t, h.press("o"))

		if len(h.opened) != 1 || h.opened[0] != services.MovieURL(603) {
			t.Errorf("unexpected opened urls %v", h.opened)
		}
	})
}

func TestSession(t *testing.T) {
	t.Run("Sign In", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(t, "demo@example.com", "password")

		if h.m.view != HomeView {
			t.Errorf("expected home view, got %v", h.m.view)
		}
		if !h.m.session.IsAuthenticated() || h.m.session.Identity.Username != "demo" {
			t.Errorf("expected demo session, got %+v", h.m.session)
		}
		if h.m.status != "Signed in as demo" {
			t.Errorf("unexpected status %q", h.m.status)
		}
		if got := len(h.m.watchlists.Items()); got != 2 {
			t.Errorf("expected 2 owned watchlists, got %d", got)
		}
		if !strings.Contains(h.m.View(), "demo") {
			t.Error("header should show the username")
		}
	})

	t.Run("Wrong Password", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(t, "demo@example.com", "nope")

		if h.m.view != LoginView {
			t.Errorf("expected to stay on login, got %v", h.m.view)
		}
		if !errors.Is(h.m.err, shared.ErrInvalidCredentials) {
			t.Errorf("expected invalid credentials, got %v", h.m.err)
		}
		if h.m.passwordInput.Value() != "" {
			t.Error("password should be cleared")
		}
		h.press("esc")
		if h.m.view != HomeView || h.m.err != nil {
			t.Error("esc should leave login and clear the error")
		}
	})

	t.Run("Sign Out", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(t, "demo@example.com", "password")
		h.collections.SetCurrent("w1")
		h.flush()

		h.run(t, h.press("i"))
		if h.m.session.IsAuthenticated() {
			t.Error("expected signed out session")
		}
		if _, ok := h.collections.Current(); ok {
			t.Error("sign out should clear the current watchlist")
		}
		if len(h.m.watchlists.Items()) != 0 {
			t.Error("watchlists should be empty when signed out")
		}
	})

	t.Run("Watchlists Need Sign In", func(t *testing.T) {
		h := newHarness(t)
		h.press("w")
		if h.m.view != HomeView || !strings.Contains(h.m.status, "Sign in") {
			t.Errorf("expected sign-in hint, got view %v status %q", h.m.view, h.m.status)
		}
	})
}

func TestWatchlists(t *testing.T) {
	t.Run("Add Requires Sign In", func(t *testing.T) {
		h := newHarness(t)
		h.loadFeed(t)
		if cmd := h.press("a"); cmd != nil {
			t.Error("expected no command")
		}
		if !strings.Contains(h.m.status, "Sign in") {
			t.Errorf("unexpected status %q", h.m.status)
		}
	})

	t.Run("Add Requires Current", func(t *testing.T) {
		h := newHarness(t)
		h.loadFeed(t)
		h.signIn(t, "demo@example.com", "password")
		if cmd := h.press("a"); cmd != nil {
			t.Error("expected no command")
		}
		if !strings.Contains(h.m.status, "Pick a watchlist") {
			t.Errorf("unexpected status %q", h.m.status)
		}
	})

	t.Run("Select Then Add", func(t *testing.T) {
		h := newHarness(t)
		h.loadFeed(t)
		h.signIn(t, "demo@example.com", "password")

		h.press("w")
		if h.m.view != WatchlistsView {
			t.Fatalf("expected watchlists view, got %v", h.m.view)
		}
		h.run(t, h.press("enter"))
		if h.m.view != WatchlistView || h.m.openID != "w1" {
			t.Fatalf("expected w1 open, got %v %q", h.m.view, h.m.openID)
		}
		if h.m.collections.CurrentID != "w1" {
			t.Errorf("expected w1 current, got %q", h.m.collections.CurrentID)
		}

		h.press("esc")
		h.press("esc")
		h.run(t, h.press("a"))

		c, _ := h.collections.Find("w1")
		if !c.HasMovie(603) {
			t.Fatal("expected The Matrix in Favorites")
		}
		if h.m.status != "Added The Matrix to Favorites" {
			t.Errorf("unexpected status %q", h.m.status)
		}

		if cmd := h.press("a"); cmd != nil {
			t.Error("adding a duplicate should not issue a command")
		}
		if !strings.Contains(h.m.status, "already in") {
			t.Errorf("unexpected status %q", h.m.status)
		}
	})

	t.Run("Remove From Open", func(t *testing.T) {
		h := newHarness(t)
		h.collections.AddMovie("w1", tu.SampleMovie(603, "The Matrix"))
		h.signIn(t, "demo@example.com", "password")

		h.press("w")
		h.run(t, h.press("enter"))
		if got := len(h.m.entries.Items()); got != 1 {
			t.Fatalf("expected 1 entry, got %d", got)
		}

		h.run(t, h.press("x"))
		c, _ := h.collections.Find("w1")
		if c.HasMovie(603) {
			t.Error("expected The Matrix removed")
		}
		if len(h.m.entries.Items()) != 0 {
			t.Error("entries should refresh after removal")
		}
	})

	t.Run("Create", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(t, "demo@example.com", "password")
		h.press("w")
		h.press("n")
		if h.m.view != CreateView {
			t.Fatalf("expected create view, got %v", h.m.view)
		}
		h.press("Noir")
		h.run(t, h.press("enter"))

		if h.m.view != WatchlistsView {
			t.Errorf("expected watchlists view, got %v", h.m.view)
		}
		if got := len(h.m.watchlists.Items()); got != 3 {
			t.Errorf("expected 3 watchlists, got %d", got)
		}
		owned := h.collections.ListByOwner(stores.DemoOwnerID)
		if owned[len(owned)-1].Name != "Noir" {
			t.Errorf("unexpected watchlists %+v", owned)
		}
	})

	t.Run("Create Blank Name", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(t, "demo@example.com", "password")
		h.press("w")
		h.press("n")
		h.run(t, h.press("enter"))

		if !strings.Contains(h.m.status, "Could not create") {
			t.Errorf("unexpected status %q", h.m.status)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		h := newHarness(t)
		h.signIn(t, "demo@example.com", "password")
		h.press("w")
		h.run(t, h.press("x"))

		if _, ok := h.collections.Find("w1"); ok {
			t.Error("expected w1 deleted")
		}
		if h.m.status != "Deleted Favorites" {
			t.Errorf("unexpected status %q", h.m.status)
		}
	})
}

func TestSearchAndDetails(t *testing.T) {
	h := newHarness(t)
	h.loadFeed(t)

	h.press("/")
	if h.m.view != SearchView || !h.m.searchInput.Focused() {
		t.Fatal("expected focused search input")
	}
	if cmd := h.press("enter"); cmd != nil {
		t.Error("blank query should not search")
	}

	h.press("matrix")
	h.run(t, h.press("enter"))
	if h.m.query != "matrix" || len(h.m.results.Items()) != 1 {
		t.Fatalf("unexpected search state %q %d", h.m.query, len(h.m.results.Items()))
	}
	if !strings.Contains(h.m.results.Title, `"matrix"`) {
		t.Errorf("unexpected results title %q", h.m.results.Title)
	}

	h.run(t, h.press("enter"))
	if h.m.view != DetailsView || h.m.details == nil || h.m.details.ID != 603 {
		t.Fatalf("expected details for 603, got view %v", h.m.view)
	}
	if view := h.m.View(); !strings.Contains(view, "Welcome to the Real World.") {
		t.Errorf("details view missing tagline: %s", view)
	}

	h.press("esc")
	if h.m.view != SearchView || h.m.details != nil {
		t.Errorf("esc should return to search, got %v", h.m.view)
	}

	h.press("esc")
	if h.m.view != HomeView {
		t.Errorf("expected home view, got %v", h.m.view)
	}

	t.Run("Details Not Found", func(t *testing.T) {
		h := newHarness(t)
		h.loadFeed(t)
		h.press("tab")
		h.run(t, h.press("enter"))

		if h.m.view != HomeView {
			t.Errorf("expected to stay home, got %v", h.m.view)
		}
		if !errors.Is(h.m.err, shared.ErrNotFound) {
			t.Errorf("expected not found, got %v", h.m.err)
		}
	})
}

func TestWindowSize(t *testing.T) {
	h := newHarness(t)
	h.m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	if h.m.width != 100 || h.m.height != 40 {
		t.Errorf("unexpected size %dx%d", h.m.width, h.m.height)
	}
	if h.m.movies.Width() != 96 || h.m.movies.Height() != 32 {
		t.Errorf("unexpected list size %dx%d", h.m.movies.Width(), h.m.movies.Height())
	}
}

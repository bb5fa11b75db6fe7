package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/stores"
	"github.com/desertthunder/marquee/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	HomeView ViewState = iota
	SearchView
	DetailsView
	WatchlistsView
	WatchlistView
	LoginView
	CreateView
)

// Deps are the services and stores the TUI reads and mutates.
type Deps struct {
	Catalog     services.Catalog
	Engine      *tasks.Engine
	Session     *stores.SessionStore
	Collections *stores.CollectionStore
	Images      services.Images
	OpenURL     func(string) error // defaults to [shared.OpenBrowser]
}

// Model represents the TUI application state.
//
// Store mutations run inside commands, off the update loop, so store observers may call [tea.Program.Send].
type Model struct {
	ctx  context.Context
	deps Deps
	view ViewState
	back ViewState

	width  int
	height int

	loading    bool
	feed       *tasks.Feed
	row        int
	movies     list.Model
	query      string
	results    list.Model
	details    *models.MovieDetails
	watchlists list.Model
	entries    list.Model
	openID     string

	searchInput   textinput.Model
	emailInput    textinput.Model
	passwordInput textinput.Model
	nameInput     textinput.Model

	session     stores.SessionState
	collections stores.CollectionState

	status string
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, deps Deps) *Model {
	if deps.OpenURL == nil {
		deps.OpenURL = shared.OpenBrowser
	}
	if deps.Engine == nil {
		deps.Engine = tasks.NewEngine(deps.Catalog, deps.Collections)
	}

	search := textinput.New()
	search.Placeholder = "Search movies..."
	search.CharLimit = 100

	email := textinput.New()
	email.Placeholder = "demo@example.com"

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	name := textinput.New()
	name.Placeholder = "Watchlist name"
	name.CharLimit = 100

	m := &Model{
		ctx:           ctx,
		deps:          deps,
		view:          HomeView,
		searchInput:   search,
		emailInput:    email,
		passwordInput: password,
		nameInput:     name,
		session:       deps.Session.State(),
		collections:   deps.Collections.Snapshot(),
		help:          help.New(),
		keys:          newKeyMap(),
	}
	m.movies = newList("Loading...", nil, 0, 0)
	m.results = newList("Search", nil, 0, 0)
	m.entries = newList("Watchlist", nil, 0, 0)
	m.watchlists = newList("Watchlists", nil, 0, 0)
	m.refreshWatchlists()
	return m
}

// Subscribe forwards store changes to send, typically [tea.Program.Send].
func (m *Model) Subscribe(send func(tea.Msg)) (unsubscribe func()) {
	unsubSession := m.deps.Session.Subscribe(func(st stores.SessionState) {
		send(sessionChangedMsg(st))
	})
	unsubCollections := m.deps.Collections.Subscribe(func(st stores.CollectionState) {
		send(collectionsChangedMsg(st))
	})
	return func() {
		unsubSession()
		unsubCollections()
	}
}

// Init loads the home feed.
func (m *Model) Init() tea.Cmd {
	if m.deps.Catalog == nil {
		m.status = "No catalog configured: set TMDB_API_KEY or tmdb.api_key"
		return nil
	}
	m.loading = true
	return m.loadFeed()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.view {
		case HomeView:
			return m.handleHomeKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case DetailsView:
			return m.handleDetailsKeys(msg)
		case WatchlistsView:
			return m.handleWatchlistsKeys(msg)
		case WatchlistView:
			return m.handleWatchlistKeys(msg)
		case LoginView:
			return m.handleLoginKeys(msg)
		case CreateView:
			return m.handleCreateKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgFeedLoaded:
		p := msg.data.(feedPayload)
		m.loading = false
		m.feed = p.feed
		if p.err != nil {
			m.err = p.err
		}
		m.showRow()

	case MsgSearchLoaded:
		p := msg.data.(searchPayload)
		m.loading = false
		if p.err != nil {
			m.err = p.err
			return m, nil
		}
		m.err = nil
		m.results = newList(
			fmt.Sprintf("Results for %q (%d)", p.query, p.page.TotalResults),
			movieItems(p.page.Results), m.listWidth(), m.listHeight(),
		)

	case MsgDetailsLoaded:
		p := msg.data.(detailsPayload)
		m.loading = false
		if p.err != nil {
			m.err = p.err
			return m, nil
		}
		m.err = nil
		m.details = &p.details
		m.view = DetailsView

	case MsgLoginDone:
		if err, _ := msg.data.(error); err != nil {
			m.err = err
			m.passwordInput.SetValue("")
			return m, nil
		}
		m.err = nil
		m.emailInput.Reset()
		m.passwordInput.Reset()
		m.view = HomeView
		if identity, ok := m.deps.Session.Current(); ok {
			m.status = "Signed in as " + identity.Username
		}

	case MsgSessionChanged:
		m.session = msg.data.(stores.SessionState)
		m.refreshWatchlists()

	case MsgCollectionsChanged:
		m.collections = msg.data.(stores.CollectionState)
		m.refreshWatchlists()
		m.refreshEntries()

	case MsgStatus:
		m.status = msg.data.(string)
	}
	return m, nil
}

func (m *Model) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		m.moveRow(1)
		return m, nil
	case "shift+tab":
		m.moveRow(-1)
		return m, nil
	case "/":
		return m, m.openSearch()
	case "w":
		return m, m.openWatchlists()
	case "i":
		return m, m.toggleSession()
	case "enter":
		return m, m.loadDetails(m.selectedMovie(m.movies), HomeView)
	case "a":
		return m, m.addToCurrent(m.selectedMovie(m.movies))
	case "o":
		return m, m.openMovie(m.selectedMovie(m.movies))
	}

	var cmd tea.Cmd
	m.movies, cmd = m.movies.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchInput.Focused() {
		switch msg.String() {
		case "esc":
			m.searchInput.Blur()
			m.view = HomeView
			return m, nil
		case "enter":
			query := strings.TrimSpace(m.searchInput.Value())
			if query == "" {
				return m, nil
			}
			m.searchInput.Blur()
			m.query = query
			m.loading = true
			return m, m.runSearch(query)
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.view = HomeView
		return m, nil
	case "/":
		return m, m.searchInput.Focus()
	case "enter":
		return m, m.loadDetails(m.selectedMovie(m.results), SearchView)
	case "a":
		return m, m.addToCurrent(m.selectedMovie(m.results))
	case "o":
		return m, m.openMovie(m.selectedMovie(m.results))
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m *Model) handleDetailsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.view = m.back
		m.details = nil
		return m, nil
	case "a":
		if m.details != nil {
			return m, m.addToCurrent(&m.details.Movie)
		}
	case "o":
		if m.details != nil {
			return m, m.openMovie(&m.details.Movie)
		}
	}
	return m, nil
}

func (m *Model) handleWatchlistsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.view = HomeView
		return m, nil
	case "n":
		m.view = CreateView
		m.nameInput.Reset()
		return m, m.nameInput.Focus()
	case "enter":
		if c, ok := m.selectedCollection(); ok {
			m.openID = c.ID
			m.refreshEntries()
			m.view = WatchlistView
			return m, m.setCurrent(c.ID, c.Name)
		}
		return m, nil
	case "x":
		if c, ok := m.selectedCollection(); ok {
			return m, m.deleteCollection(c.ID, c.Name)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.watchlists, cmd = m.watchlists.Update(msg)
	return m, cmd
}

func (m *Model) handleWatchlistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "esc":
		m.view = WatchlistsView
		return m, nil
	case "enter":
		return m, m.loadDetails(m.selectedMovie(m.entries), WatchlistView)
	case "x":
		if movie := m.selectedMovie(m.entries); movie != nil {
			return m, m.removeFromOpen(*movie)
		}
		return m, nil
	case "o":
		return m, m.openMovie(m.selectedMovie(m.entries))
	}

	var cmd tea.Cmd
	m.entries, cmd = m.entries.Update(msg)
	return m, cmd
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.err = nil
		m.view = HomeView
		return m, nil
	case "tab", "shift+tab":
		return m, m.swapLoginFocus()
	case "enter":
		if m.emailInput.Focused() {
			return m, m.swapLoginFocus()
		}
		return m, m.login(m.emailInput.Value(), m.passwordInput.Value())
	}

	var cmd tea.Cmd
	if m.emailInput.Focused() {
		m.emailInput, cmd = m.emailInput.Update(msg)
	} else {
		m.passwordInput, cmd = m.passwordInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleCreateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.nameInput.Blur()
		m.view = WatchlistsView
		return m, nil
	case "enter":
		m.nameInput.Blur()
		m.view = WatchlistsView
		return m, m.createCollection(m.nameInput.Value())
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case HomeView:
		m.movies, cmd = m.movies.Update(msg)
	case SearchView:
		if m.searchInput.Focused() {
			m.searchInput, cmd = m.searchInput.Update(msg)
		} else {
			m.results, cmd = m.results.Update(msg)
		}
	case WatchlistsView:
		m.watchlists, cmd = m.watchlists.Update(msg)
	case WatchlistView:
		m.entries, cmd = m.entries.Update(msg)
	}
	return m, cmd
}

func (m *Model) listWidth() int {
	return max(m.width-4, 20)
}

func (m *Model) listHeight() int {
	return max(m.height-8, 5)
}

func (m *Model) resize() {
	w, h := m.listWidth(), m.listHeight()
	m.movies.SetSize(w, h)
	m.results.SetSize(w, h)
	m.watchlists.SetSize(w, h)
	m.entries.SetSize(w, h)
	m.help.Width = m.width
}

func (m *Model) moveRow(delta int) {
	if m.feed == nil || len(m.feed.Rows) == 0 {
		return
	}
	n := len(m.feed.Rows)
	m.row = ((m.row+delta)%n + n) % n
	m.showRow()
}

func (m *Model) showRow() {
	if m.feed == nil || m.row >= len(m.feed.Rows) {
		return
	}
	row := m.feed.Rows[m.row]
	m.movies = newList(row.Label, movieItems(row.Page.Results), m.listWidth(), m.listHeight())
}

// refreshWatchlists rebuilds the watchlist list from the latest session and collection snapshots.
func (m *Model) refreshWatchlists() {
	var owned []models.Collection
	if m.session.Identity != nil {
		for _, c := range m.collections.Collections {
			if c.OwnerID == m.session.Identity.ID {
				owned = append(owned, c)
			}
		}
	}
	idx := m.watchlists.Index()
	m.watchlists = newList("My Watchlists", collectionItems(owned, m.collections.CurrentID), m.listWidth(), m.listHeight())
	if idx < len(owned) {
		m.watchlists.Select(idx)
	}
}

func (m *Model) refreshEntries() {
	c, ok := m.collections.Find(m.openID)
	if !ok {
		if m.view == WatchlistView {
			m.view = WatchlistsView
		}
		return
	}
	idx := m.entries.Index()
	m.entries = newList(c.Name, movieItems(c.Movies), m.listWidth(), m.listHeight())
	if idx < len(c.Movies) {
		m.entries.Select(idx)
	}
}

func (m *Model) selectedMovie(l list.Model) *models.Movie {
	if item, ok := l.SelectedItem().(movieItem); ok {
		movie := item.movie
		return &movie
	}
	return nil
}

func (m *Model) selectedCollection() (models.Collection, bool) {
	if item, ok := m.watchlists.SelectedItem().(collectionItem); ok {
		return item.collection, true
	}
	return models.Collection{}, false
}

func (m *Model) openSearch() tea.Cmd {
	if m.deps.Catalog == nil {
		m.status = "Search needs a catalog API key"
		return nil
	}
	m.err = nil
	m.view = SearchView
	return m.searchInput.Focus()
}

func (m *Model) openWatchlists() tea.Cmd {
	if !m.session.IsAuthenticated() {
		m.status = "Sign in (i) to manage watchlists"
		return nil
	}
	m.err = nil
	m.view = WatchlistsView
	return nil
}

func (m *Model) swapLoginFocus() tea.Cmd {
	if m.emailInput.Focused() {
		m.emailInput.Blur()
		return m.passwordInput.Focus()
	}
	m.passwordInput.Blur()
	return m.emailInput.Focus()
}

func (m *Model) toggleSession() tea.Cmd {
	if m.session.IsAuthenticated() {
		session, collections := m.deps.Session, m.deps.Collections
		return func() tea.Msg {
			session.Logout(m.ctx)
			collections.SetCurrent("")
			return statusMsg("Signed out")
		}
	}
	m.err = nil
	m.view = LoginView
	m.passwordInput.Blur()
	return m.emailInput.Focus()
}

func (m *Model) loadFeed() tea.Cmd {
	engine := m.deps.Engine
	return func() tea.Msg {
		feed, err := engine.HomeFeed(m.ctx, 1)
		return feedLoadedMsg(feed, err)
	}
}

func (m *Model) runSearch(query string) tea.Cmd {
	catalog := m.deps.Catalog
	return func() tea.Msg {
		page, err := catalog.Search(m.ctx, query, 1)
		return searchLoadedMsg(query, page, err)
	}
}

func (m *Model) loadDetails(movie *models.Movie, from ViewState) tea.Cmd {
	if movie == nil || m.deps.Catalog == nil {
		return nil
	}
	m.back = from
	m.loading = true
	catalog, id := m.deps.Catalog, movie.ID
	return func() tea.Msg {
		details, err := catalog.Details(m.ctx, id)
		return detailsLoadedMsg(details, err)
	}
}

func (m *Model) login(email, password string) tea.Cmd {
	session := m.deps.Session
	return func() tea.Msg {
		_, err := session.Login(m.ctx, email, password)
		return loginDoneMsg(err)
	}
}

// addToCurrent adds movie to the current watchlist, which must belong to the signed-in user.
func (m *Model) addToCurrent(movie *models.Movie) tea.Cmd {
	if movie == nil {
		return nil
	}
	if !m.session.IsAuthenticated() {
		m.status = "Sign in (i) to add movies"
		return nil
	}
	current, ok := m.collections.Current()
	if !ok || current.OwnerID != m.session.Identity.ID {
		m.status = "Pick a watchlist first (w, enter)"
		return nil
	}
	if current.HasMovie(movie.ID) {
		m.status = fmt.Sprintf("%s is already in %s", movie.Title, current.Name)
		return nil
	}

	collections, id, name, entry := m.deps.Collections, current.ID, current.Name, *movie
	return func() tea.Msg {
		collections.AddMovie(id, entry)
		return statusMsg(fmt.Sprintf("Added %s to %s", entry.Title, name))
	}
}

func (m *Model) removeFromOpen(movie models.Movie) tea.Cmd {
	collections, id := m.deps.Collections, m.openID
	return func() tea.Msg {
		collections.RemoveMovie(id, movie.ID)
		return statusMsg("Removed " + movie.Title)
	}
}

func (m *Model) setCurrent(id, name string) tea.Cmd {
	collections := m.deps.Collections
	return func() tea.Msg {
		collections.SetCurrent(id)
		return statusMsg("Current watchlist: " + name)
	}
}

func (m *Model) createCollection(name string) tea.Cmd {
	if m.session.Identity == nil {
		return nil
	}
	collections, owner := m.deps.Collections, m.session.Identity.ID
	return func() tea.Msg {
		c, err := collections.Create(stores.NewCollection{OwnerID: owner, Name: name})
		if err != nil {
			return statusMsg("Could not create watchlist: " + err.Error())
		}
		return statusMsg("Created " + c.Name)
	}
}

func (m *Model) deleteCollection(id, name string) tea.Cmd {
	collections := m.deps.Collections
	return func() tea.Msg {
		collections.Delete(id)
		return statusMsg("Deleted " + name)
	}
}

func (m *Model) openMovie(movie *models.Movie) tea.Cmd {
	if movie == nil {
		return nil
	}
	open, url := m.deps.OpenURL, services.MovieURL(movie.ID)
	return func() tea.Msg {
		if err := open(url); err != nil {
			return statusMsg("Could not open browser: " + err.Error())
		}
		return statusMsg("Opened " + url)
	}
}

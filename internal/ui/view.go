package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
)

// View renders the current view.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")

	switch m.view {
	case HomeView:
		b.WriteString(m.homeView())
	case SearchView:
		b.WriteString(m.searchView())
	case DetailsView:
		b.WriteString(m.detailsView())
	case WatchlistsView:
		b.WriteString(m.watchlistsView())
	case WatchlistView:
		b.WriteString(m.entries.View())
	case LoginView:
		b.WriteString(m.loginView())
	case CreateView:
		b.WriteString(styles.title.Render("New Watchlist"))
		b.WriteString("\n")
		b.WriteString(m.nameInput.View())
	}

	b.WriteString("\n")
	if m.err != nil {
		b.WriteString(styles.err.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	} else if m.status != "" {
		b.WriteString(styles.ok.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.ShortHelpView(m.bindings()))
	return b.String()
}

func (m *Model) header() string {
	user := styles.help.Render("not signed in")
	if m.session.Pending {
		user = styles.warn.Render("signing in...")
	} else if m.session.Identity != nil {
		user = styles.ok.Render(m.session.Identity.Username)
	}

	parts := []string{styles.title.UnsetMarginBottom().Render("marquee"), user}
	if c, ok := m.collections.Current(); ok {
		parts = append(parts, styles.help.Render("watchlist: "+c.Name))
	}
	return strings.Join(parts, "  ")
}

func (m *Model) homeView() string {
	if m.loading {
		return styles.warn.Render("Loading movies...")
	}
	if m.feed == nil {
		return styles.help.Render("Nothing to show.")
	}

	tabs := make([]string, len(m.feed.Rows))
	for i, row := range m.feed.Rows {
		if i == m.row {
			tabs[i] = styles.active.Render(row.Label)
		} else {
			tabs[i] = styles.tab.Render(row.Label)
		}
	}

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n\n")
	if row := m.feed.Rows[m.row]; row.Err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Could not load %s: %v", row.Label, row.Err)))
		return b.String()
	}
	b.WriteString(m.movies.View())
	return b.String()
}

func (m *Model) searchView() string {
	var b strings.Builder
	b.WriteString(m.searchInput.View())
	b.WriteString("\n\n")
	switch {
	case m.loading:
		b.WriteString(styles.warn.Render("Searching..."))
	case m.query != "":
		b.WriteString(m.results.View())
	}
	return b.String()
}

func (m *Model) detailsView() string {
	if m.details == nil {
		return ""
	}
	d := m.details
	wrap := lipgloss.NewStyle().Width(m.listWidth())

	var b strings.Builder
	title := d.Title
	if year := shared.ReleaseYear(d.ReleaseDate); year != "" {
		title = fmt.Sprintf("%s (%s)", title, year)
	}
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")
	if d.Tagline != "" {
		b.WriteString(styles.help.Render(d.Tagline))
		b.WriteString("\n")
	}

	facts := []string{fmt.Sprintf("★ %.1f", d.VoteAverage)}
	if d.Runtime != nil {
		if rt := shared.FormatRuntime(*d.Runtime); rt != "" {
			facts = append(facts, rt)
		}
	}
	if names := d.GenreNames(); len(names) > 0 {
		facts = append(facts, strings.Join(names, ", "))
	}
	if d.Status != "" {
		facts = append(facts, d.Status)
	}
	b.WriteString(strings.Join(facts, " • "))
	b.WriteString("\n\n")

	if d.Overview != "" {
		b.WriteString(wrap.Render(d.Overview))
		b.WriteString("\n\n")
	}
	if directors := d.Directors(); len(directors) > 0 {
		fmt.Fprintf(&b, "Directed by: %s\n", strings.Join(directors, ", "))
	}
	if cast := d.TopCast(5); len(cast) > 0 {
		names := make([]string, len(cast))
		for i, c := range cast {
			names[i] = c.Name
			if c.Character != "" {
				names[i] = fmt.Sprintf("%s as %s", c.Name, c.Character)
			}
		}
		b.WriteString(wrap.Render("Cast: " + strings.Join(names, ", ")))
		b.WriteString("\n")
	}
	if trailer, ok := d.Trailer(); ok {
		fmt.Fprintf(&b, "Trailer: %s\n", trailer.URL())
	}
	if poster := m.deps.Images.Poster(d.PosterPath, services.PosterLarge); !services.IsPlaceholder(poster) {
		fmt.Fprintf(&b, "Poster: %s\n", poster)
	}
	if recs := d.Recommendations.Results; len(recs) > 0 {
		n := min(len(recs), 5)
		titles := make([]string, n)
		for i := range n {
			titles[i] = recs[i].Title
		}
		b.WriteString(wrap.Render("More like this: " + strings.Join(titles, ", ")))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) watchlistsView() string {
	if len(m.watchlists.Items()) == 0 {
		return styles.help.Render("No watchlists yet. Press n to create one.")
	}
	return m.watchlists.View()
}

func (m *Model) loginView() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Sign In"))
	b.WriteString("\n")
	b.WriteString(m.emailInput.View())
	b.WriteString("\n")
	b.WriteString(m.passwordInput.View())
	b.WriteString("\n\n")
	b.WriteString(styles.help.Render("Demo account: demo@example.com / password"))
	return b.String()
}

// bindings selects the help entries that apply to the current view.
func (m *Model) bindings() []key.Binding {
	k := m.keys
	switch m.view {
	case HomeView:
		return []key.Binding{k.nextTab, k.enter, k.search, k.watchlists, k.add, k.open, k.session, k.quit}
	case SearchView:
		if m.searchInput.Focused() {
			return []key.Binding{k.enter, k.back}
		}
		return []key.Binding{k.enter, k.search, k.add, k.open, k.back}
	case DetailsView:
		return []key.Binding{k.add, k.open, k.back}
	case WatchlistsView:
		return []key.Binding{k.enter, k.create, k.remove, k.back}
	case WatchlistView:
		return []key.Binding{k.enter, k.remove, k.open, k.back}
	case LoginView:
		return []key.Binding{k.nextTab, k.enter, k.back}
	case CreateView:
		return []key.Binding{k.enter, k.back}
	}
	return k.ShortHelp()
}

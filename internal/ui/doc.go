// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing the catalog and curating watchlists:
//  1. [HomeView] : Browse the home feed, one tab per category row
//  2. [SearchView] : Search the catalog by title
//  3. [DetailsView] : Inspect a movie with credits, trailer and recommendations
//  4. [WatchlistsView] : List the signed-in user's watchlists and pick the current one
//  5. [WatchlistView] : Review and prune the movies in one watchlist
//  6. [LoginView] and [CreateView] : Sign in and name new watchlists
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Session and collection store changes reach the model through [Model.Subscribe], so every view renders from the latest snapshot.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, /, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui

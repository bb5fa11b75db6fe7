package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

var (
	_ list.Item = movieItem{}
	_ list.Item = collectionItem{}
)

// movieItem wraps [models.Movie] to implement [list.Item].
type movieItem struct {
	movie models.Movie
}

func (i movieItem) FilterValue() string { return i.movie.Title }

func (i movieItem) Title() string {
	if year := shared.ReleaseYear(i.movie.ReleaseDate); year != "" {
		return fmt.Sprintf("%s (%s)", i.movie.Title, year)
	}
	return i.movie.Title
}

func (i movieItem) Description() string {
	parts := []string{fmt.Sprintf("★ %.1f", i.movie.VoteAverage)}
	if i.movie.Runtime != nil {
		if rt := shared.FormatRuntime(*i.movie.Runtime); rt != "" {
			parts = append(parts, rt)
		}
	}
	if names := i.movie.GenreNames(); len(names) > 0 {
		parts = append(parts, strings.Join(names, ", "))
	}
	return strings.Join(parts, " • ")
}

// collectionItem wraps [models.Collection] to implement [list.Item].
type collectionItem struct {
	collection models.Collection
	current    bool
}

func (i collectionItem) FilterValue() string { return i.collection.Name }

func (i collectionItem) Title() string {
	if i.current {
		return "▸ " + i.collection.Name
	}
	return i.collection.Name
}

func (i collectionItem) Description() string {
	desc := fmt.Sprintf("%d movies • %s", len(i.collection.Movies), shared.VisibilityString(i.collection.IsPublic))
	if i.collection.Description != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.collection.Description)
	}
	return desc
}

func movieItems(movies []models.Movie) []list.Item {
	items := make([]list.Item, len(movies))
	for i, m := range movies {
		items[i] = movieItem{movie: m}
	}
	return items
}

func collectionItems(collections []models.Collection, currentID string) []list.Item {
	items := make([]list.Item, len(collections))
	for i, c := range collections {
		items[i] = collectionItem{collection: c, current: c.ID == currentID}
	}
	return items
}

// newList creates a list with filtering, its own help and its quit keys turned off; the model handles those.
func newList(title string, items []list.Item, width, height int) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	return l
}

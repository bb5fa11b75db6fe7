package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/stores"
	"github.com/desertthunder/marquee/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgFeedLoaded MsgKind = iota
	MsgSearchLoaded
	MsgDetailsLoaded
	MsgLoginDone
	MsgSessionChanged
	MsgCollectionsChanged
	MsgStatus
)

type feedPayload struct {
	feed *tasks.Feed
	err  error
}

type searchPayload struct {
	query string
	page  models.MoviePage
	err   error
}

type detailsPayload struct {
	details models.MovieDetails
	err     error
}

// feedLoadedMsg is the constructor for [MsgFeedLoaded]
func feedLoadedMsg(feed *tasks.Feed, err error) Msg {
	return Msg{kind: MsgFeedLoaded, data: feedPayload{feed: feed, err: err}}
}

// searchLoadedMsg is the constructor for [MsgSearchLoaded]
func searchLoadedMsg(query string, page models.MoviePage, err error) Msg {
	return Msg{kind: MsgSearchLoaded, data: searchPayload{query: query, page: page, err: err}}
}

// detailsLoadedMsg is the constructor for [MsgDetailsLoaded]
func detailsLoadedMsg(details models.MovieDetails, err error) Msg {
	return Msg{kind: MsgDetailsLoaded, data: detailsPayload{details: details, err: err}}
}

// loginDoneMsg is the constructor for [MsgLoginDone]
func loginDoneMsg(err error) Msg {
	return Msg{kind: MsgLoginDone, data: err}
}

// sessionChangedMsg is the constructor for [MsgSessionChanged]
func sessionChangedMsg(state stores.SessionState) Msg {
	return Msg{kind: MsgSessionChanged, data: state}
}

// collectionsChangedMsg is the constructor for [MsgCollectionsChanged]
func collectionsChangedMsg(state stores.CollectionState) Msg {
	return Msg{kind: MsgCollectionsChanged, data: state}
}

// statusMsg is the constructor for [MsgStatus]
func statusMsg(text string) Msg {
	return Msg{kind: MsgStatus, data: text}
}

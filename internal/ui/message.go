package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotctl/internal/models"
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
	MsgStatusFetched MsgKind = iota
	MsgActionDone
	MsgPlaylistsFetched
	MsgTick
)

type statusData struct {
	playback *models.Playback
	message  string
	err      error
}

type actionData struct {
	message string
	err     error
}

type playlistsData struct {
	playlists []models.Playlist
	err       error
}

// statusFetchedMsg is the constructor for [MsgStatusFetched]
func statusFetchedMsg(playback *models.Playback, message string, err error) Msg {
	return Msg{kind: MsgStatusFetched, data: statusData{playback, message, err}}
}

// actionDoneMsg is the constructor for [MsgActionDone]
func actionDoneMsg(message string, err error) Msg {
	return Msg{kind: MsgActionDone, data: actionData{message, err}}
}

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlistsData{playlists, err}}
}

// tickMsg is the constructor for [MsgTick]
func tickMsg() Msg {
	return Msg{kind: MsgTick}
}

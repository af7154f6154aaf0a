package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/spotctl/internal/formatter"
	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/services"
)

// DefaultPollInterval is how often the status is refreshed without user input.
const DefaultPollInterval = 5 * time.Second

// ViewState represents the current view in the TUI.
type ViewState int

const (
	NowPlayingView ViewState = iota
	PlaylistView
)

// Remote is the control API. Implemented by [services.APIService].
type Remote interface {
	Control(ctx context.Context, action string, req models.ControlRequest) (*services.ControlResponse, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	remote       Remote
	userID       string
	pollInterval time.Duration

	view         ViewState
	width        int
	height       int
	playback     *models.Playback
	status       string
	err          error
	playlistList list.Model
	loaded       bool
	help         help.Model
	keys         keyMap
}

// NewModel creates a remote for userID. A non-positive interval uses [DefaultPollInterval].
func NewModel(ctx context.Context, remote Remote, userID string, interval time.Duration) *Model {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Model{
		ctx:          ctx,
		remote:       remote,
		userID:       userID,
		pollInterval: interval,
		view:         NowPlayingView,
		status:       "Connecting...",
		help:         help.New(),
		keys:         newKeyMap(),
	}
}

// Init fetches the status and starts polling.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchStatus(), m.tick())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.loaded {
			m.playlistList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) && !m.filtering() {
			return m, tea.Quit
		}
		switch m.view {
		case NowPlayingView:
			return m.handleNowPlayingKeys(msg)
		case PlaylistView:
			return m.handlePlaylistKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTick:
		return m, tea.Batch(m.fetchStatus(), m.tick())

	case MsgStatusFetched:
		data := msg.data.(statusData)
		m.err = data.err
		if data.err == nil {
			m.playback = data.playback
			if data.playback == nil {
				m.status = data.message
			}
		}
		return m, nil

	case MsgActionDone:
		data := msg.data.(actionData)
		m.err = data.err
		if data.err == nil {
			m.status = data.message
		}
		return m, m.fetchStatus()

	case MsgPlaylistsFetched:
		data := msg.data.(playlistsData)
		if data.err != nil {
			m.err = data.err
			m.view = NowPlayingView
			return m, nil
		}
		items := make([]list.Item, len(data.playlists))
		for i, pl := range data.playlists {
			items[i] = playlistItem{playlist: pl}
		}
		m.playlistList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.playlistList.Title = "Playlists"
		m.playlistList.SetSize(m.width-4, m.height-8)
		m.loaded = true
		return m, nil
	}
	return m, nil
}

func (m *Model) handleNowPlayingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.playPause):
		return m, m.control("playpause", models.ControlRequest{})
	case key.Matches(msg, m.keys.next):
		return m, m.control("next", models.ControlRequest{})
	case key.Matches(msg, m.keys.prev):
		return m, m.control("prev", models.ControlRequest{})
	case key.Matches(msg, m.keys.like):
		if m.playback == nil || m.playback.Track == nil {
			return m, nil
		}
		liked := !m.playback.IsLiked
		return m, m.control("like", models.ControlRequest{TrackID: m.playback.Track.ID, IsLiked: &liked})
	case key.Matches(msg, m.keys.refresh):
		return m, m.fetchStatus()
	case key.Matches(msg, m.keys.playlists):
		m.view = PlaylistView
		if !m.loaded {
			return m, m.fetchPlaylists()
		}
	}
	return m, nil
}

func (m *Model) handlePlaylistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.filtering() {
		switch {
		case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.playlists):
			m.view = NowPlayingView
			return m, nil
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.playlistList.SelectedItem().(playlistItem); ok {
				m.view = NowPlayingView
				return m, m.control("playlist", models.ControlRequest{PlaylistID: item.playlist.ID})
			}
			return m, nil
		}
	}
	return m.updateList(msg)
}

func (m *Model) filtering() bool {
	return m.view == PlaylistView && m.loaded && m.playlistList.FilterState() == list.Filtering
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != PlaylistView || !m.loaded {
		return m, nil
	}
	var cmd tea.Cmd
	m.playlistList, cmd = m.playlistList.Update(msg)
	return m, cmd
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.pollInterval, func(time.Time) tea.Msg { return tickMsg() })
}

func (m *Model) fetchStatus() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.remote.Control(m.ctx, "status", models.ControlRequest{UserID: m.userID})
		if err != nil {
			return statusFetchedMsg(nil, "", remoteError(resp, err))
		}
		if len(resp.Data) == 0 {
			return statusFetchedMsg(nil, resp.Message, nil)
		}
		var playback models.Playback
		if err := resp.Decode(&playback); err != nil {
			return statusFetchedMsg(nil, "", err)
		}
		return statusFetchedMsg(&playback, resp.Message, nil)
	}
}

func (m *Model) fetchPlaylists() tea.Cmd {
	return func() tea.Msg {
		resp, err := m.remote.Control(m.ctx, "playlists", models.ControlRequest{UserID: m.userID})
		if err != nil {
			return playlistsFetchedMsg(nil, remoteError(resp, err))
		}
		var playlists []models.Playlist
		if err := resp.Decode(&playlists); err != nil {
			return playlistsFetchedMsg(nil, err)
		}
		return playlistsFetchedMsg(playlists, nil)
	}
}

func (m *Model) control(action string, req models.ControlRequest) tea.Cmd {
	req.UserID = m.userID
	return func() tea.Msg {
		resp, err := m.remote.Control(m.ctx, action, req)
		if err != nil {
			return actionDoneMsg("", remoteError(resp, err))
		}
		return actionDoneMsg(resp.Message, nil)
	}
}

// remoteError prefers the relay's envelope message over the transport error.
func remoteError(resp *services.ControlResponse, err error) error {
	if resp != nil && resp.Message != "" {
		return fmt.Errorf("%s", resp.Message)
	}
	return err
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case PlaylistView:
		return m.renderPlaylists()
	default:
		return m.renderNowPlaying()
	}
}

func (m *Model) renderNowPlaying() string {
	title := styles.title.Render("spotctl")

	var body string
	switch {
	case m.playback == nil:
		body = styles.warn.Render(m.status)
	case m.playback.Track == nil:
		body = styles.warn.Render("Nothing playing")
	default:
		body = formatter.NowPlaying(m.playback)
		if m.playback.Track.Album != "" {
			body += "\n" + styles.help.Render(m.playback.Track.Album)
		}
		if m.playback.DeviceName != "" {
			body += "\n" + styles.help.Render("on "+m.playback.DeviceName)
		}
		if m.status != "" {
			body += "\n\n" + styles.ok.Render(m.status)
		}
	}

	if m.err != nil {
		body += "\n\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}

	return fmt.Sprintf("%s\n%s\n\n%s", title, body, m.help.View(m.keys))
}

func (m *Model) renderPlaylists() string {
	if !m.loaded {
		return fmt.Sprintf("%s\n%s", styles.title.Render("Playlists"), styles.help.Render("Loading..."))
	}
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.playlistList.View(), helpView)
}

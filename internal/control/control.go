// Package control maps playback actions onto single Spotify calls.
//
// [Router.Dispatch] validates a [models.ControlRequest] in a fixed order: user identifier, action name, authorization,
// action specific fields. Nothing reaches Spotify until all of them pass. Upstream failures are reported as
// [shared.ErrUpstream] without the upstream detail, which is logged instead.
package control

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/spotctl/internal/metrics"
	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/services"
	"github.com/desertthunder/spotctl/internal/shared"
)

// Action is a playback command name.
type Action string

const (
	PlayPause Action = "playpause"
	Next      Action = "next"
	Prev      Action = "prev"
	Status    Action = "status"
	Search    Action = "search"
	Like      Action = "like"
	Playlists Action = "playlists"
	Playlist  Action = "playlist"
)

// Actions lists every supported action.
var Actions = []Action{PlayPause, Next, Prev, Status, Search, Like, Playlists, Playlist}

const playlistLimit = 50

// ParseAction validates name against [Actions].
func ParseAction(name string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Actions {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", shared.ErrInvalidAction, name)
}

// ClientSource resolves a user to a player. Implemented by [sessions.Manager].
type ClientSource interface {
	Client(ctx context.Context, userID string) (services.Player, error)
}

// Result is the outcome of a successful dispatch.
type Result struct {
	Message string
	Data    any
}

// LikeResult is the data of a [Like] result.
type LikeResult struct {
	TrackID string `json:"track_id"`
	IsLiked bool   `json:"is_liked"`
}

// Router dispatches control requests.
type Router struct {
	clients ClientSource
	logger  *log.Logger
}

// NewRouter creates a [Router]. A nil logger writes to stderr.
func NewRouter(clients ClientSource, logger *log.Logger) *Router {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Router{clients: clients, logger: logger}
}

// Dispatch runs the request's action for its user.
func (r *Router) Dispatch(ctx context.Context, req models.ControlRequest) (*Result, error) {
	if req.UserID == "" {
		return nil, shared.ErrMissingUserID
	}

	action, err := ParseAction(req.Action)
	if err != nil {
		metrics.ControlActions.WithLabelValues("invalid", "rejected").Inc()
		return nil, err
	}

	player, err := r.clients.Client(ctx, req.UserID)
	if err != nil {
		metrics.ControlActions.WithLabelValues(string(action), "unauthorized").Inc()
		return nil, err
	}

	if err := validate(action, req); err != nil {
		metrics.ControlActions.WithLabelValues(string(action), "rejected").Inc()
		return nil, err
	}

	result, err := r.run(ctx, player, action, req)
	if err != nil {
		metrics.ControlActions.WithLabelValues(string(action), "error").Inc()
		r.logger.Error("spotify control failed", "user", req.UserID, "action", action, "err", err)
		return nil, fmt.Errorf("%w: %s", shared.ErrUpstream, action)
	}

	metrics.ControlActions.WithLabelValues(string(action), "ok").Inc()
	return result, nil
}

func validate(action Action, req models.ControlRequest) error {
	switch {
	case action == Search && strings.TrimSpace(req.Query) == "":
		return fmt.Errorf("%w: query is required", shared.ErrInvalidInput)
	case action == Like && req.TrackID == "":
		return fmt.Errorf("%w: track_id is required", shared.ErrInvalidInput)
	case action == Playlist && req.PlaylistID == "":
		return fmt.Errorf("%w: playlist_id is required", shared.ErrInvalidInput)
	}
	return nil
}

func (r *Router) run(ctx context.Context, p services.Player, action Action, req models.ControlRequest) (*Result, error) {
	switch action {
	case PlayPause:
		return playPause(ctx, p)
	case Next:
		return &Result{Message: "Next track"}, p.Next(ctx)
	case Prev:
		return &Result{Message: "Previous track"}, p.Previous(ctx)
	case Status:
		return status(ctx, p)
	case Search:
		return search(ctx, p, req.Query)
	case Like:
		return like(ctx, p, req)
	case Playlists:
		return playlists(ctx, p)
	case Playlist:
		return playPlaylist(ctx, p, req.PlaylistID)
	}
	return nil, fmt.Errorf("%w: %q", shared.ErrInvalidAction, action)
}

func playPause(ctx context.Context, p services.Player) (*Result, error) {
	playback, err := p.CurrentPlayback(ctx)
	if err != nil {
		return nil, err
	}

	if playback != nil && playback.IsPlaying {
		return &Result{Message: "Paused"}, p.Pause(ctx)
	}
	return &Result{Message: "Playing"}, p.Play(ctx, models.PlayOptions{})
}

func status(ctx context.Context, p services.Player) (*Result, error) {
	playback, err := p.CurrentPlayback(ctx)
	if err != nil {
		return nil, err
	}
	if playback == nil {
		return &Result{Message: "No active device"}, nil
	}

	if playback.Track != nil && playback.Track.ID != "" {
		saved, err := p.TracksSaved(ctx, playback.Track.ID)
		if err != nil {
			return nil, err
		}
		playback.IsLiked = len(saved) > 0 && saved[0]
	}

	msg := "Paused"
	if playback.IsPlaying {
		msg = "Playing"
	}
	return &Result{Message: msg, Data: playback}, nil
}

func search(ctx context.Context, p services.Player, query string) (*Result, error) {
	track, err := p.SearchTrack(ctx, strings.TrimSpace(query))
	if errors.Is(err, shared.ErrTrackNotFound) {
		return &Result{Message: "Track not found"}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := p.Play(ctx, models.PlayOptions{URIs: []string{track.URI}}); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("Playing %s by %s", track.Name, track.Artist()), Data: track}, nil
}

// like treats is_liked as the desired state. An absent flag means like.
func like(ctx context.Context, p services.Player, req models.ControlRequest) (*Result, error) {
	want := req.IsLiked == nil || *req.IsLiked

	if want {
		if err := p.SaveTracks(ctx, req.TrackID); err != nil {
			return nil, err
		}
		return &Result{Message: "Added to Liked Songs", Data: LikeResult{TrackID: req.TrackID, IsLiked: true}}, nil
	}

	if err := p.RemoveTracks(ctx, req.TrackID); err != nil {
		return nil, err
	}
	return &Result{Message: "Removed from Liked Songs", Data: LikeResult{TrackID: req.TrackID, IsLiked: false}}, nil
}

func playlists(ctx context.Context, p services.Player) (*Result, error) {
	list, err := p.Playlists(ctx, playlistLimit)
	if err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("%d playlists", len(list)), Data: list}, nil
}

func playPlaylist(ctx context.Context, p services.Player, id string) (*Result, error) {
	uri := id
	if !strings.HasPrefix(uri, "spotify:") {
		uri = "spotify:playlist:" + id
	}
	if err := p.Play(ctx, models.PlayOptions{ContextURI: uri}); err != nil {
		return nil, err
	}
	return &Result{Message: "Playing playlist"}, nil
}

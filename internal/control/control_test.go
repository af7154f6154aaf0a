package control

import (
	"context"
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/services"
	"github.com/desertthunder/spotctl/internal/shared"
	tu "github.com/desertthunder/spotctl/internal/testing"
)

// staticSource hands out one player for a single authorized user.
type staticSource struct {
	userID  string
	player  *tu.FakePlayer
	lookups int
}

func (s *staticSource) Client(ctx context.Context, userID string) (services.Player, error) {
	s.lookups++
	if userID != s.userID {
		return nil, shared.ErrNotAuthorized
	}
	return s.player, nil
}

func newTestRouter(player *tu.FakePlayer) (*Router, *staticSource) {
	source := &staticSource{userID: "42", player: player}
	return NewRouter(source, shared.NewLogger(io.Discard)), source
}

func boolPtr(b bool) *bool { return &b }

func TestParseAction(t *testing.T) {
	for _, a := range Actions {
		got, err := ParseAction(string(a))
		if err != nil || got != a {
			t.Errorf("ParseAction(%q) = %q, %v", a, got, err)
		}
	}

	if got, err := ParseAction(" Next "); err != nil || got != Next {
		t.Errorf("expected case and space insensitive parse, got %q, %v", got, err)
	}
	if _, err := ParseAction("shuffle"); !errors.Is(err, shared.ErrInvalidAction) {
		t.Errorf("expected ErrInvalidAction, got %v", err)
	}
}

func TestDispatchValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("Missing User", func(t *testing.T) {
		r, source := newTestRouter(&tu.FakePlayer{})
		if _, err := r.Dispatch(ctx, models.ControlRequest{Action: "next"}); !errors.Is(err, shared.ErrMissingUserID) {
			t.Errorf("expected ErrMissingUserID, got %v", err)
		}
		if source.lookups != 0 {
			t.Error("expected no client lookup")
		}
	})

	t.Run("Unknown Action Makes No Calls", func(t *testing.T) {
		player := &tu.FakePlayer{}
		r, source := newTestRouter(player)

		_, err := r.Dispatch(ctx, models.ControlRequest{UserID: "42", Action: "shuffle"})
		if !errors.Is(err, shared.ErrInvalidAction) {
			t.Errorf("expected ErrInvalidAction, got %v", err)
		}
		if source.lookups != 0 || len(player.Calls()) != 0 {
			t.Errorf("expected no lookups or upstream calls, got %d and %v", source.lookups, player.Calls())
		}
	})

	t.Run("Unauthorized For Every Action", func(t *testing.T) {
		player := &tu.FakePlayer{}
		r, _ := newTestRouter(player)

		for _, a := range Actions {
			_, err := r.Dispatch(ctx, models.ControlRequest{UserID: "stranger", Action: string(a), Query: "q", TrackID: "t", PlaylistID: "p"})
			if !errors.Is(err, shared.ErrNotAuthorized) {
				t.Errorf("%s: expected ErrNotAuthorized, got %v", a, err)
			}
		}
		if len(player.Calls()) != 0 {
			t.Errorf("expected no upstream calls, got %v", player.Calls())
		}
	})

	t.Run("Missing Action Fields", func(t *testing.T) {
		for _, a := range []Action{Search, Like, Playlist} {
			player := &tu.FakePlayer{}
			r, _ := newTestRouter(player)

			_, err := r.Dispatch(ctx, models.ControlRequest{UserID: "42", Action: string(a)})
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("%s: expected ErrInvalidInput, got %v", a, err)
			}
			if len(player.Calls()) != 0 {
				t.Errorf("%s: expected no upstream calls, got %v", a, player.Calls())
			}
		}
	})
}

func TestDispatchActions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		player  *tu.FakePlayer
		req     models.ControlRequest
		calls   []string
		message string
	}{
		{
			name:    "PlayPause While Playing Pauses",
			player:  &tu.FakePlayer{Playback: &models.Playback{IsPlaying: true}},
			req:     models.ControlRequest{Action: "playpause"},
			calls:   []string{"current_playback", "pause"},
			message: "Paused",
		},
		{
			name:    "PlayPause While Paused Resumes",
			player:  &tu.FakePlayer{Playback: &models.Playback{IsPlaying: false}},
			req:     models.ControlRequest{Action: "playpause"},
			calls:   []string{"current_playback", "play"},
			message: "Playing",
		},
		{
			name:    "PlayPause Without Device Resumes",
			player:  &tu.FakePlayer{},
			req:     models.ControlRequest{Action: "playpause"},
			calls:   []string{"current_playback", "play"},
			message: "Playing",
		},
		{
			name:    "Next",
			player:  &tu.FakePlayer{},
			req:     models.ControlRequest{Action: "next"},
			calls:   []string{"next"},
			message: "Next track",
		},
		{
			name:    "Prev",
			player:  &tu.FakePlayer{},
			req:     models.ControlRequest{Action: "prev"},
			calls:   []string{"previous"},
			message: "Previous track",
		},
		{
			name:    "Search Not Found Is Success",
			player:  &tu.FakePlayer{},
			req:     models.ControlRequest{Action: "search", Query: "zzzz"},
			calls:   []string{"search"},
			message: "Track not found",
		},
		{
			name:    "Search Plays Hit",
			player:  &tu.FakePlayer{SearchHit: &models.Track{Name: "Song", URI: "spotify:track:1", Artists: []string{"Band"}}},
			req:     models.ControlRequest{Action: "search", Query: "song"},
			calls:   []string{"search", "play"},
			message: "Playing Song by Band",
		},
		{
			name:    "Like Saves",
			player:  &tu.FakePlayer{},
			req:     models.ControlRequest{Action: "like", TrackID: "t1", IsLiked: boolPtr(true)},
			calls:   []string{"save_tracks"},
			message: "Added to Liked Songs",
		},
		{
			name:    "Like Without Flag Saves",
			player:  &tu.FakePlayer{},
			req:     models.ControlRequest{Action: "like", TrackID: "t1"},
			calls:   []string{"save_tracks"},
			message: "Added to Liked Songs",
		},
		{
			name:    "Unlike Removes",
			player:  &tu.FakePlayer{},
			req:     models.ControlRequest{Action: "like", TrackID: "t1", IsLiked: boolPtr(false)},
			calls:   []string{"remove_tracks"},
			message: "Removed from Liked Songs",
		},
		{
			name:    "Playlists",
			player:  &tu.FakePlayer{PlaylistSet: []models.Playlist{{ID: "p1"}, {ID: "p2"}}},
			req:     models.ControlRequest{Action: "playlists"},
			calls:   []string{"playlists"},
			message: "2 playlists",
		},
		{
			name:    "Playlist",
			player:  &tu.FakePlayer{},
			req:     models.ControlRequest{Action: "playlist", PlaylistID: "p1"},
			calls:   []string{"play"},
			message: "Playing playlist",
		},
		{
			name:    "Status Without Device",
			player:  &tu.FakePlayer{},
			req:     models.ControlRequest{Action: "status"},
			calls:   []string{"current_playback"},
			message: "No active device",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(tt.player)
			tt.req.UserID = "42"

			result, err := r.Dispatch(ctx, tt.req)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, result.Message)
			}
			if got := tt.player.Calls(); !reflect.DeepEqual(got, tt.calls) {
				t.Errorf("expected calls %v, got %v", tt.calls, got)
			}
		})
	}
}

func TestDispatchDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("Search Plays Track URI", func(t *testing.T) {
		player := &tu.FakePlayer{SearchHit: &models.Track{URI: "spotify:track:1"}}
		r, _ := newTestRouter(player)

		if _, err := r.Dispatch(ctx, models.ControlRequest{UserID: "42", Action: "search", Query: "x"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !reflect.DeepEqual(player.LastPlay.URIs, []string{"spotify:track:1"}) {
			t.Errorf("expected track URI played, got %+v", player.LastPlay)
		}
	})

	t.Run("Playlist Context URI", func(t *testing.T) {
		for id, want := range map[string]string{
			"p1":                  "spotify:playlist:p1",
			"spotify:playlist:p2": "spotify:playlist:p2",
		} {
			player := &tu.FakePlayer{}
			r, _ := newTestRouter(player)

			if _, err := r.Dispatch(ctx, models.ControlRequest{UserID: "42", Action: "playlist", PlaylistID: id}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if player.LastPlay.ContextURI != want {
				t.Errorf("expected context %s, got %s", want, player.LastPlay.ContextURI)
			}
		}
	})

	t.Run("Status Reports Liked State", func(t *testing.T) {
		player := &tu.FakePlayer{
			Playback: &models.Playback{IsPlaying: true, Track: &models.Track{ID: "t1"}},
			Saved:    []bool{true},
		}
		r, _ := newTestRouter(player)

		result, err := r.Dispatch(ctx, models.ControlRequest{UserID: "42", Action: "status"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		pb, ok := result.Data.(*models.Playback)
		if !ok || !pb.IsLiked || result.Message != "Playing" {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("Like Data", func(t *testing.T) {
		player := &tu.FakePlayer{}
		r, _ := newTestRouter(player)

		result, _ := r.Dispatch(ctx, models.ControlRequest{UserID: "42", Action: "like", TrackID: "t1", IsLiked: boolPtr(false)})
		if result.Data != (LikeResult{TrackID: "t1", IsLiked: false}) {
			t.Errorf("unexpected data %+v", result.Data)
		}
		if !reflect.DeepEqual(player.LastIDs, []string{"t1"}) {
			t.Errorf("expected track id passed, got %v", player.LastIDs)
		}
	})

	t.Run("Upstream Failure Is Generic", func(t *testing.T) {
		cause := errors.New("Player command failed: No active device found")
		r, _ := newTestRouter(&tu.FakePlayer{Err: cause})

		_, err := r.Dispatch(ctx, models.ControlRequest{UserID: "42", Action: "next"})
		if !errors.Is(err, shared.ErrUpstream) {
			t.Fatalf("expected ErrUpstream, got %v", err)
		}
		if errors.Is(err, cause) {
			t.Error("expected upstream detail not to be wrapped")
		}
	})
}

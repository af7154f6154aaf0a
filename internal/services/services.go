package services

import (
	"context"

	"github.com/desertthunder/spotctl/internal/models"
)

// Player is the slice of the Spotify Web API the control router needs, bound to one user's access token.
type Player interface {
	// CurrentPlayback returns the playback state. A nil [models.Playback] means no active device.
	CurrentPlayback(ctx context.Context) (*models.Playback, error)

	// Pause pauses playback on the active device.
	Pause(ctx context.Context) error

	// Play resumes playback, or starts the given URIs or context.
	Play(ctx context.Context, opts models.PlayOptions) error

	// Next skips to the next track.
	Next(ctx context.Context) error

	// Previous skips to the previous track.
	Previous(ctx context.Context) error

	// SearchTrack returns the best match for query or an error wrapping [shared.ErrTrackNotFound].
	SearchTrack(ctx context.Context, query string) (*models.Track, error)

	// SaveTracks adds tracks to the user's Liked Songs.
	SaveTracks(ctx context.Context, ids ...string) error

	// RemoveTracks removes tracks from the user's Liked Songs.
	RemoveTracks(ctx context.Context, ids ...string) error

	// TracksSaved reports, per ID, whether the track is in the user's Liked Songs.
	TracksSaved(ctx context.Context, ids ...string) ([]bool, error)

	// Playlists lists up to limit of the user's playlists.
	Playlists(ctx context.Context, limit int) ([]models.Playlist, error)
}

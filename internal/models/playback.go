package models

import "strings"

// Track is a playable Spotify track.
type Track struct {
	ID         string   `json:"id"`
	URI        string   `json:"uri"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album,omitempty"`
	DurationMS int      `json:"duration_ms,omitempty"`
}

// Artist joins all credited artists.
func (t Track) Artist() string {
	return strings.Join(t.Artists, ", ")
}

// Playlist is a playlist in the user's library.
type Playlist struct {
	ID         string `json:"id"`
	URI        string `json:"uri"`
	Name       string `json:"name"`
	Owner      string `json:"owner,omitempty"`
	TrackCount int    `json:"track_count"`
}

// Playback is the user's current playback state.
//
// Track is nil when nothing is loaded on the active device.
type Playback struct {
	IsPlaying  bool   `json:"is_playing"`
	ProgressMS int    `json:"progress_ms"`
	DeviceName string `json:"device_name,omitempty"`
	Track      *Track `json:"track,omitempty"`
	IsLiked    bool   `json:"is_liked"`
}

// PlayOptions selects what to start playing. The zero value resumes the current context.
type PlayOptions struct {
	URIs       []string `json:"uris,omitempty"`
	ContextURI string   `json:"context_uri,omitempty"`
}

// IsZero reports whether the options select nothing, i.e. a plain resume.
func (o PlayOptions) IsZero() bool {
	return len(o.URIs) == 0 && o.ContextURI == ""
}

// package formatter renders playback state and playlists for the terminal (plain text, JSON, CSV, Markdown)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/shared"
)

// Format selects an output encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates s. The empty string means [FormatText].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatCSV, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidInput, s)
	}
}

// FormatDuration renders milliseconds as m:ss.
func FormatDuration(ms int) string {
	if ms < 0 {
		ms = 0
	}
	secs := ms / 1000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// NowPlaying is a one-line summary of pb, e.g. "▶ Artist - Song [1:05/3:20]".
func NowPlaying(pb *models.Playback) string {
	if pb == nil {
		return "No active device"
	}
	if pb.Track == nil {
		return "Nothing playing"
	}

	icon := "⏸"
	if pb.IsPlaying {
		icon = "▶"
	}
	line := fmt.Sprintf("%s %s - %s [%s/%s]", icon, pb.Track.Artist(), pb.Track.Name,
		FormatDuration(pb.ProgressMS), FormatDuration(pb.Track.DurationMS))
	if pb.IsLiked {
		line += " ♥"
	}
	return line
}

// PlaybackToText renders pb as labelled lines.
func PlaybackToText(pb *models.Playback) []byte {
	var buf bytes.Buffer
	buf.WriteString(NowPlaying(pb) + "\n")
	if pb == nil {
		return buf.Bytes()
	}

	if pb.Track != nil && pb.Track.Album != "" {
		buf.WriteString(fmt.Sprintf("Album: %s\n", pb.Track.Album))
	}
	if pb.DeviceName != "" {
		buf.WriteString(fmt.Sprintf("Device: %s\n", pb.DeviceName))
	}
	return buf.Bytes()
}

// PlaybackToMarkdown renders pb as a short Markdown section.
func PlaybackToMarkdown(pb *models.Playback) []byte {
	var buf bytes.Buffer
	if pb == nil || pb.Track == nil {
		buf.WriteString("# Nothing playing\n")
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("# %s\n\n", pb.Track.Name))
	buf.WriteString(fmt.Sprintf("**Artist**: %s\n", pb.Track.Artist()))
	if pb.Track.Album != "" {
		buf.WriteString(fmt.Sprintf("**Album**: %s\n", pb.Track.Album))
	}
	buf.WriteString(fmt.Sprintf("**Progress**: %s / %s\n", FormatDuration(pb.ProgressMS), FormatDuration(pb.Track.DurationMS)))
	if pb.DeviceName != "" {
		buf.WriteString(fmt.Sprintf("**Device**: %s\n", pb.DeviceName))
	}
	return buf.Bytes()
}

// PlaylistsToCSV converts playlists to CSV with columns: ID, Name, Owner, Tracks, URI
func PlaylistsToCSV(playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Name", "Owner", "Tracks", "URI"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, p := range playlists {
		record := []string{p.ID, p.Name, p.Owner, strconv.Itoa(p.TrackCount), p.URI}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// PlaylistsToMarkdown renders playlists as a numbered Markdown list.
func PlaylistsToMarkdown(playlists []models.Playlist) []byte {
	var buf bytes.Buffer
	buf.WriteString("## Playlists\n\n")
	for i, p := range playlists {
		ownerPart := ""
		if p.Owner != "" {
			ownerPart = fmt.Sprintf(" by %s", p.Owner)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s (%d tracks) `%s`\n", i+1, p.Name, ownerPart, p.TrackCount, p.ID))
	}
	return buf.Bytes()
}

// PlaylistsToText renders playlists one per line.
func PlaylistsToText(playlists []models.Playlist) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Playlists: %d\n\n", len(playlists)))
	for i, p := range playlists {
		buf.WriteString(fmt.Sprintf("%d. %s [%s] (%d tracks)\n", i+1, p.Name, p.ID, p.TrackCount))
	}
	return buf.Bytes()
}

// ToJSON renders v as indented JSON.
func ToJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderPlayback encodes pb in format. CSV is not supported for a single playback.
func RenderPlayback(pb *models.Playback, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return PlaybackToText(pb), nil
	case FormatJSON:
		return ToJSON(pb)
	case FormatMarkdown:
		return PlaybackToMarkdown(pb), nil
	default:
		return nil, fmt.Errorf("%w: format %q not supported for playback", shared.ErrInvalidInput, format)
	}
}

// RenderPlaylists encodes playlists in format.
func RenderPlaylists(playlists []models.Playlist, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return PlaylistsToText(playlists), nil
	case FormatJSON:
		return ToJSON(playlists)
	case FormatCSV:
		return PlaylistsToCSV(playlists)
	case FormatMarkdown:
		return PlaylistsToMarkdown(playlists), nil
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidInput, format)
	}
}

// Write copies data to w.
func Write(w io.Writer, data []byte) error {
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

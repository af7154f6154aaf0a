// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/shared"
	"golang.org/x/oauth2"
)

// FakePlayer is a test double for services.Player that records every call.
type FakePlayer struct {
	mu    sync.Mutex
	calls []string

	Playback    *models.Playback
	SearchHit   *models.Track
	Saved       []bool
	PlaylistSet []models.Playlist
	LastPlay    models.PlayOptions
	LastIDs     []string

	// Err is returned by every call when set.
	Err error
}

func (f *FakePlayer) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	return f.Err
}

// Calls returns the recorded call names in order.
func (f *FakePlayer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakePlayer) CurrentPlayback(ctx context.Context) (*models.Playback, error) {
	if err := f.record("current_playback"); err != nil {
		return nil, err
	}
	return f.Playback, nil
}

func (f *FakePlayer) Pause(ctx context.Context) error { return f.record("pause") }

func (f *FakePlayer) Play(ctx context.Context, opts models.PlayOptions) error {
	f.mu.Lock()
	f.LastPlay = opts
	f.mu.Unlock()
	return f.record("play")
}

func (f *FakePlayer) Next(ctx context.Context) error     { return f.record("next") }
func (f *FakePlayer) Previous(ctx context.Context) error { return f.record("previous") }

func (f *FakePlayer) SearchTrack(ctx context.Context, query string) (*models.Track, error) {
	if err := f.record("search"); err != nil {
		return nil, err
	}
	if f.SearchHit == nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, query)
	}
	return f.SearchHit, nil
}

func (f *FakePlayer) SaveTracks(ctx context.Context, ids ...string) error {
	f.mu.Lock()
	f.LastIDs = ids
	f.mu.Unlock()
	return f.record("save_tracks")
}

func (f *FakePlayer) RemoveTracks(ctx context.Context, ids ...string) error {
	f.mu.Lock()
	f.LastIDs = ids
	f.mu.Unlock()
	return f.record("remove_tracks")
}

func (f *FakePlayer) TracksSaved(ctx context.Context, ids ...string) ([]bool, error) {
	if err := f.record("tracks_saved"); err != nil {
		return nil, err
	}
	return f.Saved, nil
}

func (f *FakePlayer) Playlists(ctx context.Context, limit int) ([]models.Playlist, error) {
	if err := f.record("playlists"); err != nil {
		return nil, err
	}
	return f.PlaylistSet, nil
}

// FakeOAuth is a test double for the OAuth provider used by the session manager.
type FakeOAuth struct {
	mu       sync.Mutex
	refreshs int
	exchange int

	// Token is returned by Exchange and Refresh.
	Token *oauth2.Token
	// ExchangeErr and RefreshErr fail the respective call when set.
	ExchangeErr error
	RefreshErr  error
	// Gate, when set, blocks Refresh until it is closed.
	Gate chan struct{}
}

func (f *FakeOAuth) AuthURL(state string) string {
	return "https://accounts.example.com/authorize?response_type=code&state=" + state
}

func (f *FakeOAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	f.mu.Lock()
	f.exchange++
	f.mu.Unlock()
	if f.ExchangeErr != nil {
		return nil, f.ExchangeErr
	}
	return f.Token, nil
}

func (f *FakeOAuth) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if f.Gate != nil {
		<-f.Gate
	}
	f.mu.Lock()
	f.refreshs++
	f.mu.Unlock()
	if f.RefreshErr != nil {
		return nil, f.RefreshErr
	}
	return f.Token, nil
}

// Refreshes returns how many times Refresh ran.
func (f *FakeOAuth) Refreshes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshs
}

// Exchanges returns how many times Exchange ran.
func (f *FakeOAuth) Exchanges() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exchange
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// JSONResponse builds an *http.Response with body for use with [NewMockRoundTripper].
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// Spotify Web API implementation of [Player]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/spotctl/internal/metrics"
	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// DefaultScopes are requested when no scopes are configured.
var DefaultScopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"playlist-read-private",
	"user-library-read",
	"user-library-modify",
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	URI        string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type simplePlaylistTrack struct {
	Total int `json:"total"`
}

// SpotifySimplePlaylist represents a simplified playlist object (used in lists).
type SpotifySimplePlaylist struct {
	ID     string              `json:"id"`
	Name   string              `json:"name"`
	Owner  Owner               `json:"owner"`
	Tracks simplePlaylistTrack `json:"tracks"`
	URI    string              `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items []SpotifySimplePlaylist `json:"items"`
	Total int                     `json:"total"`
	Next  *string                 `json:"next"`
}

// SpotifyDevice represents a Spotify Connect device.
type SpotifyDevice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// SpotifyPlaybackState is the response of GET /me/player.
type SpotifyPlaybackState struct {
	Device     SpotifyDevice `json:"device"`
	ProgressMS int           `json:"progress_ms"`
	IsPlaying  bool          `json:"is_playing"`
	Item       *SpotifyTrack `json:"item"`
}

// SpotifySearchResponse is the response of GET /search with type=track.
type SpotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyError struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func (t SpotifyTrack) toModel() *models.Track {
	track := &models.Track{
		ID:         t.ID,
		URI:        t.URI,
		Name:       t.Name,
		Album:      t.Album.Name,
		DurationMS: t.DurationMS,
	}
	for _, a := range t.Artists {
		track.Artists = append(track.Artists, a.Name)
	}
	return track
}

// SpotifyOAuth drives the authorization code flow against the Spotify accounts service.
type SpotifyOAuth struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewSpotifyOAuth creates the OAuth2 configuration from client_id, client_secret and redirect_uri credentials.
//
// A nil httpClient uses [http.DefaultClient] for token requests.
func NewSpotifyOAuth(credentials map[string]string, scopes []string, httpClient *http.Client) (*SpotifyOAuth, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id in credentials", shared.ErrMissingConfig)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret in credentials", shared.ErrMissingConfig)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		return nil, fmt.Errorf("%w: missing redirect_uri in credentials", shared.ErrMissingConfig)
	}

	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	return &SpotifyOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   spotifyAuthURL,
				TokenURL:  spotifyTokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: httpClient,
	}, nil
}

// WithEndpoint points the flow at different accounts URLs.
func (s *SpotifyOAuth) WithEndpoint(authURL, tokenURL string) *SpotifyOAuth {
	s.config.Endpoint.AuthURL = authURL
	s.config.Endpoint.TokenURL = tokenURL
	return s
}

// AuthURL returns the authorization URL with state bound into the redirect.
func (s *SpotifyOAuth) AuthURL(state string) string {
	return s.config.AuthCodeURL(state)
}

func (s *SpotifyOAuth) context(ctx context.Context) context.Context {
	if s.httpClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

// Exchange trades an authorization code for a token.
func (s *SpotifyOAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(s.context(ctx), code)
	if err != nil {
		metrics.TokenOperations.WithLabelValues("exchange", "error").Inc()
		return nil, fmt.Errorf("failed to exchange auth code: %w", err)
	}
	metrics.TokenOperations.WithLabelValues("exchange", "ok").Inc()
	return token, nil
}

// Refresh obtains a new access token for refreshToken.
func (s *SpotifyOAuth) Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	source := s.config.TokenSource(s.context(ctx), &oauth2.Token{RefreshToken: refreshToken})
	token, err := source.Token()
	if err != nil {
		metrics.TokenOperations.WithLabelValues("refresh", "error").Inc()
		return nil, fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}
	metrics.TokenOperations.WithLabelValues("refresh", "ok").Inc()
	return token, nil
}

// SpotifyClient implements [Player] for a single access token.
type SpotifyClient struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

// NewSpotifyClient creates a client for accessToken. Empty baseURL and nil httpClient use the defaults.
func NewSpotifyClient(accessToken string, httpClient *http.Client, baseURL string) *SpotifyClient {
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SpotifyClient{
		accessToken: accessToken,
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  httpClient,
	}
}

// doRequest performs an authenticated HTTP request to the Spotify API.
//
// Empty and 204 responses are successes; result is only decoded when there is a body.
func (s *SpotifyClient) doRequest(ctx context.Context, method, endpoint string, query url.Values, body, result any) error {
	apiURL := s.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(method, endpoint, "error").Inc()
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	metrics.UpstreamRequests.WithLabelValues(method, endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: %s", shared.ErrTokenExpired, errorMessage(data))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: spotify status %d: %s", shared.ErrAPIRequest, resp.StatusCode, errorMessage(data))
	}

	if result == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func errorMessage(data []byte) string {
	var e spotifyError
	if err := json.Unmarshal(data, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(data))
}

func idsQuery(ids []string) (url.Values, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no track IDs provided", shared.ErrInvalidInput)
	}
	if len(ids) > 50 {
		return nil, fmt.Errorf("%w: maximum 50 track IDs allowed", shared.ErrInvalidInput)
	}
	return url.Values{"ids": {strings.Join(ids, ",")}}, nil
}

// CurrentPlayback retrieves the playback state. Spotify answers 204 when no device is active.
func (s *SpotifyClient) CurrentPlayback(ctx context.Context) (*models.Playback, error) {
	var state *SpotifyPlaybackState
	if err := s.doRequest(ctx, http.MethodGet, "/me/player", nil, nil, &state); err != nil {
		return nil, err
	}
	if state == nil {
		return nil, nil
	}

	playback := &models.Playback{
		IsPlaying:  state.IsPlaying,
		ProgressMS: state.ProgressMS,
		DeviceName: state.Device.Name,
	}
	if state.Item != nil {
		playback.Track = state.Item.toModel()
	}
	return playback, nil
}

// Pause pauses playback.
func (s *SpotifyClient) Pause(ctx context.Context) error {
	return s.doRequest(ctx, http.MethodPut, "/me/player/pause", nil, nil, nil)
}

// Play resumes playback or starts opts.
func (s *SpotifyClient) Play(ctx context.Context, opts models.PlayOptions) error {
	var body any
	if !opts.IsZero() {
		body = opts
	}
	return s.doRequest(ctx, http.MethodPut, "/me/player/play", nil, body, nil)
}

// Next skips to the next track.
func (s *SpotifyClient) Next(ctx context.Context) error {
	return s.doRequest(ctx, http.MethodPost, "/me/player/next", nil, nil, nil)
}

// Previous skips to the previous track.
func (s *SpotifyClient) Previous(ctx context.Context) error {
	return s.doRequest(ctx, http.MethodPost, "/me/player/previous", nil, nil, nil)
}

// SearchTrack searches for a single track matching query.
func (s *SpotifyClient) SearchTrack(ctx context.Context, query string) (*models.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}

	params := url.Values{"q": {query}, "type": {"track"}, "limit": {"1"}}

	var response SpotifySearchResponse
	if err := s.doRequest(ctx, http.MethodGet, "/search", params, nil, &response); err != nil {
		return nil, err
	}

	if len(response.Tracks.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, query)
	}
	return response.Tracks.Items[0].toModel(), nil
}

// SaveTracks adds tracks to Liked Songs.
func (s *SpotifyClient) SaveTracks(ctx context.Context, ids ...string) error {
	query, err := idsQuery(ids)
	if err != nil {
		return err
	}
	return s.doRequest(ctx, http.MethodPut, "/me/tracks", query, nil, nil)
}

// RemoveTracks removes tracks from Liked Songs.
func (s *SpotifyClient) RemoveTracks(ctx context.Context, ids ...string) error {
	query, err := idsQuery(ids)
	if err != nil {
		return err
	}
	return s.doRequest(ctx, http.MethodDelete, "/me/tracks", query, nil, nil)
}

// TracksSaved checks whether tracks are in Liked Songs.
func (s *SpotifyClient) TracksSaved(ctx context.Context, ids ...string) ([]bool, error) {
	query, err := idsQuery(ids)
	if err != nil {
		return nil, err
	}

	var saved []bool
	if err := s.doRequest(ctx, http.MethodGet, "/me/tracks/contains", query, nil, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// Playlists retrieves the current user's playlists (single page, limit clamped to 1..50).
func (s *SpotifyClient) Playlists(ctx context.Context, limit int) ([]models.Playlist, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}

	var response SpotifyPaginatedPlaylists
	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if err := s.doRequest(ctx, http.MethodGet, "/me/playlists", query, nil, &response); err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(response.Items))
	for _, p := range response.Items {
		playlists = append(playlists, models.Playlist{
			ID:         p.ID,
			URI:        p.URI,
			Name:       p.Name,
			Owner:      p.Owner.DisplayName,
			TrackCount: p.Tracks.Total,
		})
	}
	return playlists, nil
}

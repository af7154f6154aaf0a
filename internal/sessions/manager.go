package sessions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/desertthunder/spotctl/internal/metrics"
	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/repositories"
	"github.com/desertthunder/spotctl/internal/services"
	"github.com/desertthunder/spotctl/internal/shared"
)

// OAuthProvider is the authorization code flow, implemented by [services.SpotifyOAuth].
type OAuthProvider interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
}

// ClientFactory builds a [services.Player] for an access token.
type ClientFactory func(accessToken string) services.Player

// SpotifyClients returns a [ClientFactory] producing [services.SpotifyClient] values sharing httpClient.
func SpotifyClients(httpClient *http.Client, baseURL string) ClientFactory {
	return func(accessToken string) services.Player {
		return services.NewSpotifyClient(accessToken, httpClient, baseURL)
	}
}

// Manager resolves user identifiers to ready-to-use Spotify clients.
type Manager struct {
	store     repositories.TokenStore
	oauth     OAuthProvider
	newClient ClientFactory
	logger    *log.Logger
	now       func() time.Time
	refreshes singleflight.Group
}

// Option configures a [Manager].
type Option func(*Manager)

// WithClock replaces [time.Now] for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger used for refresh failures.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithClientFactory replaces the default Spotify client constructor.
func WithClientFactory(f ClientFactory) Option {
	return func(m *Manager) { m.newClient = f }
}

// NewManager creates a [Manager] over store and oauth.
func NewManager(store repositories.TokenStore, oauth OAuthProvider, opts ...Option) *Manager {
	m := &Manager{
		store:     store,
		oauth:     oauth,
		newClient: SpotifyClients(nil, ""),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = shared.NewLogger(nil)
	}
	return m
}

// AuthorizationURL returns the provider URL the user must visit. The user identifier travels as the state parameter.
func (m *Manager) AuthorizationURL(userID string) (string, error) {
	if userID == "" {
		return "", shared.ErrMissingUserID
	}
	return m.oauth.AuthURL(userID), nil
}

// CompleteAuthorization exchanges code and stores the resulting record for userID.
func (m *Manager) CompleteAuthorization(ctx context.Context, code, userID string) (*models.TokenRecord, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: missing authorization code", shared.ErrAuthorization)
	}
	if userID == "" {
		return nil, fmt.Errorf("%w: missing state", shared.ErrAuthorization)
	}

	token, err := m.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthorization, err)
	}

	record := models.NewTokenRecord(userID, token, m.now())
	if err := m.store.Put(ctx, record); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrStore, err)
	}

	m.logger.Info("user authorized", "user", userID, "expires_at", record.ExpiresAt)
	return record, nil
}

// Client returns a player for userID, refreshing the stored token first when it has expired.
//
// Missing records and failed refreshes both report [shared.ErrNotAuthorized].
func (m *Manager) Client(ctx context.Context, userID string) (services.Player, error) {
	if userID == "" {
		return nil, shared.ErrMissingUserID
	}

	record, err := m.store.Get(ctx, userID)
	if errors.Is(err, shared.ErrTokenNotFound) {
		return nil, shared.ErrNotAuthorized
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrStore, err)
	}

	if record.Expired(m.now()) {
		if record, err = m.refresh(ctx, record); err != nil {
			return nil, err
		}
	}
	return m.newClient(record.AccessToken), nil
}

// Forget deletes the stored record for userID.
func (m *Manager) Forget(ctx context.Context, userID string) error {
	if userID == "" {
		return shared.ErrMissingUserID
	}
	if err := m.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrStore, err)
	}
	return nil
}

// refresh renews stale once per user at a time. Callers that arrive while a refresh is in flight share its result.
func (m *Manager) refresh(ctx context.Context, stale *models.TokenRecord) (*models.TokenRecord, error) {
	userID := stale.UserID
	// The shared refresh must not die with whichever request happened to start it.
	ctx = context.WithoutCancel(ctx)

	v, err, _ := m.refreshes.Do(userID, func() (any, error) {
		current, err := m.store.Get(ctx, userID)
		if errors.Is(err, shared.ErrTokenNotFound) {
			return nil, shared.ErrNotAuthorized
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrStore, err)
		}

		now := m.now()
		if current.AccessToken != stale.AccessToken && !current.Expired(now) {
			return current, nil
		}

		token, err := m.oauth.Refresh(ctx, current.RefreshToken)
		if err != nil {
			m.logger.Warn("token refresh failed, re-authorization required", "user", userID, "err", err)
			if derr := m.store.Delete(ctx, userID); derr != nil {
				m.logger.Error("failed to delete token record", "user", userID, "err", derr)
			}
			return nil, shared.ErrNotAuthorized
		}

		record := models.NewTokenRecord(userID, token, now)
		if record.RefreshToken == "" {
			record.RefreshToken = current.RefreshToken
		}
		if record.Scope == "" {
			record.Scope = current.Scope
		}
		if err := m.store.Put(ctx, record); err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrStore, err)
		}

		m.logger.Debug("token refreshed", "user", userID, "expires_at", record.ExpiresAt)
		return record, nil
	})
	if err != nil {
		metrics.TokenOperations.WithLabelValues("session_refresh", "error").Inc()
		return nil, err
	}
	metrics.TokenOperations.WithLabelValues("session_refresh", "ok").Inc()
	return v.(*models.TokenRecord), nil
}

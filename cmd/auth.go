package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/spotctl/internal/repositories"
	"github.com/desertthunder/spotctl/internal/services"
	"github.com/desertthunder/spotctl/internal/sessions"
	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthURL prints the Spotify authorization URL for --user, optionally opening it in a browser.
//
// The callback still has to reach a running relay for the authorization to complete.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if config.Server.BaseURL == "" {
		return fmt.Errorf("%w: WEBHOOK_BASE_URL", shared.ErrMissingConfig)
	}

	oauth, err := services.NewSpotifyOAuth(map[string]string{
		"client_id":     config.Spotify.ClientID,
		"client_secret": config.Spotify.ClientSecret,
		"redirect_uri":  config.RedirectURI(),
	}, config.Spotify.Scopes, r.httpClient)
	if err != nil {
		return err
	}

	manager := sessions.NewManager(repositories.NewMemoryTokenStore(), oauth, sessions.WithLogger(r.logger))
	url, err := manager.AuthorizationURL(cmd.String("user"))
	if err != nil {
		return err
	}

	if cmd.Bool("open") {
		if err := r.openURL(url); err != nil {
			r.logger.Warn("could not open browser", "error", err)
		}
	}

	return r.writePlain("%s\n", url)
}

// AuthStatus prints the stored authorization for --user without touching Spotify.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	store, err := r.openTokenStore(ctx, config)
	if err != nil {
		return err
	}
	defer store.Close()

	userID := cmd.String("user")
	record, err := store.Get(ctx, userID)
	if errors.Is(err, shared.ErrTokenNotFound) {
		return fmt.Errorf("%w: %s", shared.ErrNotAuthorized, userID)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrStore, err)
	}

	state := "valid"
	if record.Expired(time.Now()) {
		state = "expired, refreshed on next use"
	}
	return r.writePlain("User: %s\nScopes: %s\nExpires: %s (%s)\nUpdated: %s\n",
		record.UserID,
		strings.Join(record.Scopes(), ", "),
		record.ExpiresAt.Format(time.RFC3339), state,
		record.UpdatedAt.Format(time.RFC3339))
}

// AuthRevoke deletes the stored authorization for --user.
func (r *Runner) AuthRevoke(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	store, err := r.openTokenStore(ctx, config)
	if err != nil {
		return err
	}
	defer store.Close()

	manager := sessions.NewManager(store, nil, sessions.WithLogger(r.logger))
	userID := cmd.String("user")
	if err := manager.Forget(ctx, userID); err != nil {
		return err
	}
	return r.writePlain("Removed authorization for %s\n", userID)
}

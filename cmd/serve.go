package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/spotctl/internal/bot"
	"github.com/desertthunder/spotctl/internal/control"
	"github.com/desertthunder/spotctl/internal/server"
	"github.com/desertthunder/spotctl/internal/services"
	"github.com/desertthunder/spotctl/internal/sessions"
	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 5 * time.Second

// Serve validates the configuration, wires the relay and serves until SIGINT or SIGTERM.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if err := shared.SetLogLevel(r.logger, config.Log.Level); err != nil {
		return err
	}

	store, err := r.openTokenStore(ctx, config)
	if err != nil {
		return err
	}
	defer store.Close()

	upstream := &http.Client{Timeout: config.SpotifyTimeout()}

	oauth, err := services.NewSpotifyOAuth(map[string]string{
		"client_id":     config.Spotify.ClientID,
		"client_secret": config.Spotify.ClientSecret,
		"redirect_uri":  config.RedirectURI(),
	}, config.Spotify.Scopes, upstream)
	if err != nil {
		return err
	}

	manager := sessions.NewManager(store, oauth,
		sessions.WithLogger(shared.WithLogger(r.logger, "component", "sessions")),
		sessions.WithClientFactory(sessions.SpotifyClients(upstream, "")),
	)

	telegram, err := services.NewTelegramClient(config.Telegram.Token, upstream, "")
	if err != nil {
		return err
	}
	chat := bot.New(telegram, manager, config.Server.BaseURL, shared.WithLogger(r.logger, "component", "bot"),
		bot.WithUsername(r.botUsername(ctx, config, telegram)))

	handler := server.New(server.Options{
		Authorizer:  manager,
		Notifier:    chat,
		Updates:     chat,
		Dispatcher:  control.NewRouter(manager, shared.WithLogger(r.logger, "component", "control")),
		WebhookPath: config.WebhookPath(),
		Logger:      shared.WithLogger(r.logger, "component", "http"),
		RateLimit:   config.Server.RateLimit,
		RateBurst:   config.Server.RateBurst,
	})

	if cmd.Bool("set-webhook") {
		if err := telegram.SetWebhook(ctx, config.Server.BaseURL+config.WebhookPath()); err != nil {
			return fmt.Errorf("failed to register webhook: %w", err)
		}
		r.logger.Info("webhook registered", "base_url", config.Server.BaseURL)
	}

	return r.listen(ctx, server.NewHTTPServer(config.Addr(), handler))
}

// botUsername prefers telegram.username and falls back to getMe. Without a username, commands addressed with
// "@name" are ignored.
func (r *Runner) botUsername(ctx context.Context, config *shared.Config, telegram *services.TelegramClient) string {
	if config.Telegram.Username != "" {
		return config.Telegram.Username
	}
	name, err := telegram.Username(ctx)
	if err != nil {
		r.logger.Warn("could not resolve bot username, addressed commands will be ignored", "err", err)
		return ""
	}
	return name
}

// listen runs srv until it fails or the process is signalled, then shuts it down gracefully.
func (r *Runner) listen(ctx context.Context, srv *http.Server) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		r.logger.Info("relay listening", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	r.logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

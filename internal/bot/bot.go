// Package bot answers the Telegram commands that drive authorization.
//
// Only /start, /auth and /play are handled; everything else is ignored. Controls live in the Mini App and the
// control API, not in chat.
package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	tgmodels "github.com/go-telegram/bot/models"

	"github.com/desertthunder/spotctl/internal/services"
	"github.com/desertthunder/spotctl/internal/shared"
)

const (
	msgAuthPrompt   = "To use Spotify, authorize first (step 1), then launch the Mini App (step 2)."
	msgConfigError  = "❌ Configuration error. Check the Spotify keys."
	msgAuthFirst    = "⚠️ Authorize first with /auth"
	msgUseMiniApp   = "Use the Mini App (the ✨ button) to control playback."
	msgAuthCanceled = "❌ Spotify authorization cancelled."
	msgAuthSuccess  = "✅ *Spotify authorization succeeded!*\nYou can now use the Mini App."

	buttonAuthorize = "🔑 Authorize Spotify (step 1)"
	buttonMiniApp   = "✨ Launch Mini App (step 2)"
)

// Messenger sends chat messages. Implemented by [services.TelegramClient].
type Messenger interface {
	SendMessage(ctx context.Context, chatID, text string, markup *tgmodels.InlineKeyboardMarkup) error
}

// Authorizer is the part of [sessions.Manager] the bot needs.
type Authorizer interface {
	AuthorizationURL(userID string) (string, error)
	Client(ctx context.Context, userID string) (services.Player, error)
}

// Bot handles webhook updates and authorization notices.
type Bot struct {
	messenger Messenger
	auth      Authorizer
	appURL    string
	username  string
	logger    *log.Logger
}

// Option configures a [Bot].
type Option func(*Bot)

// WithUsername sets the bot's @username so "/start@name" commands addressed to it are accepted.
func WithUsername(name string) Option {
	return func(b *Bot) { b.username = strings.TrimPrefix(name, "@") }
}

// New creates a [Bot]. appURL is opened by the Mini App button.
func New(messenger Messenger, auth Authorizer, appURL string, logger *log.Logger, opts ...Option) *Bot {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	b := &Bot{messenger: messenger, auth: auth, appURL: appURL, logger: logger}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// HandleUpdate dispatches a single update. Send failures are logged, never returned.
func (b *Bot) HandleUpdate(ctx context.Context, update *tgmodels.Update) {
	if update == nil || update.Message == nil {
		return
	}
	msg := update.Message
	userID := strconv.FormatInt(msg.Chat.ID, 10)

	switch command(msg.Text, b.username) {
	case "start", "auth":
		b.sendAuthLink(ctx, userID)
	case "play":
		b.sendPlayHint(ctx, userID)
	default:
		b.logger.Debug("ignoring update", "update_id", update.ID, "chat", msg.Chat.ID)
	}
}

// command returns the lowercased bot command at the start of text.
//
// "/cmd@name" counts only when name is this bot; with no known username every addressed command is ignored.
func command(text, username string) string {
	if !strings.HasPrefix(text, "/") {
		return ""
	}
	cmd := strings.Fields(text)[0][1:]
	if name, addressee, ok := strings.Cut(cmd, "@"); ok {
		if username == "" || !strings.EqualFold(addressee, username) {
			return ""
		}
		cmd = name
	}
	return strings.ToLower(cmd)
}

// AuthorizationSucceeded tells the user the callback completed.
func (b *Bot) AuthorizationSucceeded(ctx context.Context, userID string) {
	b.send(ctx, userID, msgAuthSuccess, nil)
}

// AuthorizationCancelled tells the user the provider returned no code.
func (b *Bot) AuthorizationCancelled(ctx context.Context, userID string) {
	b.send(ctx, userID, msgAuthCanceled, nil)
}

func (b *Bot) sendAuthLink(ctx context.Context, userID string) {
	authURL, err := b.auth.AuthorizationURL(userID)
	if err != nil {
		b.logger.Error("failed to build authorization URL", "user", userID, "err", err)
		b.send(ctx, userID, msgConfigError, nil)
		return
	}

	markup := &tgmodels.InlineKeyboardMarkup{InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
		{{Text: buttonAuthorize, URL: authURL}},
		{{Text: buttonMiniApp, WebApp: &tgmodels.WebAppInfo{URL: b.appURL}}},
	}}
	b.send(ctx, userID, msgAuthPrompt, markup)
}

func (b *Bot) sendPlayHint(ctx context.Context, userID string) {
	if _, err := b.auth.Client(ctx, userID); err != nil {
		b.send(ctx, userID, msgAuthFirst, nil)
		return
	}
	b.send(ctx, userID, msgUseMiniApp, nil)
}

func (b *Bot) send(ctx context.Context, userID, text string, markup *tgmodels.InlineKeyboardMarkup) {
	if userID == "" {
		return
	}
	if err := b.messenger.SendMessage(ctx, userID, text, markup); err != nil {
		b.logger.Warn("failed to send telegram message", "chat", userID, "err", err)
	}
}

package bot

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tgmodels "github.com/go-telegram/bot/models"

	"github.com/desertthunder/spotctl/internal/services"
	"github.com/desertthunder/spotctl/internal/shared"
	tu "github.com/desertthunder/spotctl/internal/testing"
)

type sent struct {
	chatID string
	text   string
	markup *tgmodels.InlineKeyboardMarkup
}

type fakeMessenger struct {
	messages []sent
	err      error
}

func (f *fakeMessenger) SendMessage(ctx context.Context, chatID, text string, markup *tgmodels.InlineKeyboardMarkup) error {
	f.messages = append(f.messages, sent{chatID, text, markup})
	return f.err
}

type fakeAuthorizer struct {
	urlErr     error
	authorized map[string]bool
}

func (f *fakeAuthorizer) AuthorizationURL(userID string) (string, error) {
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "https://accounts.example.com/authorize?state=" + userID, nil
}

func (f *fakeAuthorizer) Client(ctx context.Context, userID string) (services.Player, error) {
	if !f.authorized[userID] {
		return nil, shared.ErrNotAuthorized
	}
	return &tu.FakePlayer{}, nil
}

func update(chatID int64, text string) *tgmodels.Update {
	return &tgmodels.Update{ID: 1, Message: &tgmodels.Message{Chat: tgmodels.Chat{ID: chatID}, Text: text}}
}

func newTestBot(auth *fakeAuthorizer) (*Bot, *fakeMessenger) {
	m := &fakeMessenger{}
	return New(m, auth, "https://relay.example.com", shared.NewLogger(io.Discard), WithUsername("@spotctl_bot")), m
}

func TestHandleUpdate(t *testing.T) {
	ctx := context.Background()

	for _, cmd := range []string{"/start", "/auth"} {
		t.Run(cmd+" Sends Keyboard", func(t *testing.T) {
			b, m := newTestBot(&fakeAuthorizer{})
			b.HandleUpdate(ctx, update(42, cmd))

			if len(m.messages) != 1 {
				t.Fatalf("expected 1 message, got %d", len(m.messages))
			}
			msg := m.messages[0]
			if msg.chatID != "42" || msg.text != msgAuthPrompt {
				t.Errorf("unexpected message %+v", msg)
			}
			rows := msg.markup.InlineKeyboard
			if len(rows) != 2 {
				t.Fatalf("expected 2 rows, got %d", len(rows))
			}
			if !strings.HasSuffix(rows[0][0].URL, "state=42") {
				t.Errorf("expected authorization URL button, got %+v", rows[0][0])
			}
			if rows[1][0].WebApp == nil || rows[1][0].WebApp.URL != "https://relay.example.com" {
				t.Errorf("expected Mini App button, got %+v", rows[1][0])
			}
		})
	}

	t.Run("Auth URL Failure", func(t *testing.T) {
		b, m := newTestBot(&fakeAuthorizer{urlErr: errors.New("boom")})
		b.HandleUpdate(ctx, update(42, "/auth"))

		if len(m.messages) != 1 || m.messages[0].text != msgConfigError || m.messages[0].markup != nil {
			t.Errorf("expected configuration error message, got %+v", m.messages)
		}
	})

	t.Run("Play Unauthorized", func(t *testing.T) {
		b, m := newTestBot(&fakeAuthorizer{})
		b.HandleUpdate(ctx, update(42, "/play"))

		if len(m.messages) != 1 || m.messages[0].text != msgAuthFirst {
			t.Errorf("expected authorize-first message, got %+v", m.messages)
		}
	})

	t.Run("Play Authorized", func(t *testing.T) {
		b, m := newTestBot(&fakeAuthorizer{authorized: map[string]bool{"42": true}})
		b.HandleUpdate(ctx, update(42, "/play@spotctl_bot"))

		if len(m.messages) != 1 || m.messages[0].text != msgUseMiniApp {
			t.Errorf("expected Mini App hint, got %+v", m.messages)
		}
	})

	t.Run("Ignored Updates", func(t *testing.T) {
		b, m := newTestBot(&fakeAuthorizer{})
		b.HandleUpdate(ctx, update(42, "hello"))
		b.HandleUpdate(ctx, update(42, "/shuffle"))
		b.HandleUpdate(ctx, &tgmodels.Update{ID: 2})
		b.HandleUpdate(ctx, nil)

		if len(m.messages) != 0 {
			t.Errorf("expected no messages, got %+v", m.messages)
		}
	})

	t.Run("Commands For Other Bots Are Ignored", func(t *testing.T) {
		b, m := newTestBot(&fakeAuthorizer{})
		b.HandleUpdate(ctx, update(-100, "/start@OtherBot"))
		b.HandleUpdate(ctx, update(-100, "/auth@spotctl_bot_fan"))

		if len(m.messages) != 0 {
			t.Errorf("expected no messages, got %+v", m.messages)
		}

		b.HandleUpdate(ctx, update(-100, "/start@SpotCtl_Bot"))
		if len(m.messages) != 1 || m.messages[0].chatID != "-100" {
			t.Errorf("expected a reply to the group chat, got %+v", m.messages)
		}
	})

	t.Run("Send Failure Is Swallowed", func(t *testing.T) {
		m := &fakeMessenger{err: errors.New("telegram down")}
		b := New(m, &fakeAuthorizer{}, "", shared.NewLogger(io.Discard))

		b.HandleUpdate(ctx, update(42, "/start"))
		if len(m.messages) != 1 {
			t.Errorf("expected send attempt, got %d", len(m.messages))
		}
	})
}

func TestAuthorizationNotices(t *testing.T) {
	ctx := context.Background()
	b, m := newTestBot(&fakeAuthorizer{})

	b.AuthorizationSucceeded(ctx, "42")
	b.AuthorizationCancelled(ctx, "42")
	b.AuthorizationCancelled(ctx, "")

	if len(m.messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(m.messages))
	}
	if m.messages[0].text != msgAuthSuccess || m.messages[1].text != msgAuthCanceled {
		t.Errorf("unexpected messages %+v", m.messages)
	}
}

func TestCommand(t *testing.T) {
	tests := []struct {
		text     string
		username string
		want     string
	}{
		{"/start", "spotctl_bot", "start"},
		{"/auth@spotctl_bot", "spotctl_bot", "auth"},
		{"/auth@SPOTCTL_BOT", "spotctl_bot", "auth"},
		{"/auth@other_bot", "spotctl_bot", ""},
		{"/auth@spotctl_bot", "", ""},
		{"/Play now", "", "play"},
		{"hello", "", ""},
		{"", "", ""},
		{"/", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text+"|"+tt.username, func(t *testing.T) {
			if got := command(tt.text, tt.username); got != tt.want {
				t.Errorf("command(%q, %q) = %q, want %q", tt.text, tt.username, got, tt.want)
			}
		})
	}
}

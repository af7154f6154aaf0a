package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgmodels "github.com/go-telegram/bot/models"

	"github.com/desertthunder/spotctl/internal/shared"
	tu "github.com/desertthunder/spotctl/internal/testing"
)

// botParams flattens a Bot API request, sent either as multipart form or JSON, into string values.
func botParams(t *testing.T, r *http.Request) map[string]string {
	t.Helper()
	params := map[string]string{}
	if err := r.ParseMultipartForm(1 << 20); err == nil {
		for k, v := range r.MultipartForm.Value {
			params[k] = v[0]
		}
		return params
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		t.Fatalf("failed to read request body: %v", err)
	}
	var fields map[string]any
	if len(body) > 0 {
		if err := json.Unmarshal(body, &fields); err != nil {
			t.Fatalf("unexpected request body %q: %v", body, err)
		}
	}
	for k, v := range fields {
		if s, ok := v.(string); ok {
			params[k] = s
			continue
		}
		raw, _ := json.Marshal(v)
		params[k] = string(raw)
	}
	return params
}

const sentMessage = `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":42,"type":"private"},"text":"ok"}}`

func newTestTelegram(t *testing.T, token string, h http.HandlerFunc) *TelegramClient {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	c, err := NewTelegramClient(token, server.Client(), server.URL)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return c
}

func TestTelegramClient(t *testing.T) {
	ctx := context.Background()

	t.Run("SendMessage With Keyboard", func(t *testing.T) {
		var got map[string]string
		c := newTestTelegram(t, "123:abc", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/bot123:abc/sendMessage" {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			got = botParams(t, r)
			w.Write([]byte(sentMessage))
		})

		markup := &tgmodels.InlineKeyboardMarkup{InlineKeyboard: [][]tgmodels.InlineKeyboardButton{
			{{Text: "Authorize", URL: "https://accounts.example.com"}},
			{{Text: "Open", WebApp: &tgmodels.WebAppInfo{URL: "https://relay.example.com"}}},
		}}

		if err := c.SendMessage(ctx, "42", "hello", markup); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got["chat_id"] != "42" || got["text"] != "hello" {
			t.Errorf("unexpected payload %v", got)
		}
		if got["parse_mode"] != "Markdown" {
			t.Errorf("expected Markdown parse mode, got %q", got["parse_mode"])
		}

		var keyboard tgmodels.InlineKeyboardMarkup
		if err := json.Unmarshal([]byte(got["reply_markup"]), &keyboard); err != nil {
			t.Fatalf("failed to decode reply_markup %q: %v", got["reply_markup"], err)
		}
		if len(keyboard.InlineKeyboard) != 2 {
			t.Fatalf("expected 2 keyboard rows, got %d", len(keyboard.InlineKeyboard))
		}
		if webApp := keyboard.InlineKeyboard[1][0].WebApp; webApp == nil || webApp.URL != "https://relay.example.com" {
			t.Errorf("unexpected web_app %+v", webApp)
		}
	})

	t.Run("SendMessage Without Keyboard", func(t *testing.T) {
		var got map[string]string
		c := newTestTelegram(t, "t", func(w http.ResponseWriter, r *http.Request) {
			got = botParams(t, r)
			w.Write([]byte(sentMessage))
		})

		if err := c.SendMessage(ctx, "42", "plain", nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, ok := got["reply_markup"]; ok {
			t.Errorf("expected reply_markup to be omitted, got %v", got)
		}
	})

	t.Run("SetWebhook", func(t *testing.T) {
		c := newTestTelegram(t, "t", func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/setWebhook") {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			if got := botParams(t, r)["url"]; got != "https://relay.example.com/t" {
				t.Errorf("unexpected webhook URL %s", got)
			}
			w.Write([]byte(`{"ok":true,"result":true}`))
		})

		if err := c.SetWebhook(ctx, "https://relay.example.com/t"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("Username", func(t *testing.T) {
		c := newTestTelegram(t, "t", func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/getMe") {
				t.Errorf("unexpected path %s", r.URL.Path)
			}
			w.Write([]byte(`{"ok":true,"result":{"id":7,"is_bot":true,"first_name":"Relay","username":"spotctl_bot"}}`))
		})

		name, err := c.Username(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if name != "spotctl_bot" {
			t.Errorf("expected spotctl_bot, got %q", name)
		}
	})

	t.Run("API Error", func(t *testing.T) {
		c := newTestTelegram(t, "t", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
		})

		err := c.SendMessage(ctx, "0", "x", nil)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if !strings.Contains(err.Error(), "chat not found") {
			t.Errorf("expected description in error, got %v", err)
		}
	})

	t.Run("Transport Error Redacts Token", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}
		c, err := NewTelegramClient("SECRET", client, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		err = c.SendMessage(ctx, "1", "x", nil)
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if strings.Contains(err.Error(), "SECRET") {
			t.Errorf("expected token to be redacted, got %v", err)
		}
	})
}

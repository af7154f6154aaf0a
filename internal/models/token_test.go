package models

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenRecord(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Expired", func(t *testing.T) {
		tc := []struct {
			name      string
			expiresAt time.Time
			want      bool
		}{
			{name: "far future", expiresAt: now.Add(time.Hour), want: false},
			{name: "inside skew", expiresAt: now.Add(30 * time.Second), want: true},
			{name: "exactly at skew", expiresAt: now.Add(ExpirySkew), want: true},
			{name: "past", expiresAt: now.Add(-time.Minute), want: true},
			{name: "no expiry", expiresAt: time.Time{}, want: false},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				r := &TokenRecord{AccessToken: "a", ExpiresAt: tt.expiresAt}
				if got := r.Expired(now); got != tt.want {
					t.Errorf("Expired() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("NewTokenRecord", func(t *testing.T) {
		token := (&oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			Expiry:       now.Add(time.Hour),
		}).WithExtra(map[string]any{"scope": "user-read-playback-state user-modify-playback-state"})

		r := NewTokenRecord("42", token, now)

		if r.UserID != "42" || r.AccessToken != "access" || r.RefreshToken != "refresh" {
			t.Errorf("unexpected record %+v", r)
		}
		if r.TokenType != "Bearer" {
			t.Errorf("expected default token type Bearer, got %s", r.TokenType)
		}
		if len(r.Scopes()) != 2 {
			t.Errorf("expected 2 scopes, got %v", r.Scopes())
		}
		if !r.UpdatedAt.Equal(now) {
			t.Errorf("expected updated_at %v, got %v", now, r.UpdatedAt)
		}
		if !r.ExpiresAt.Equal(now.Add(time.Hour)) {
			t.Errorf("expected expiry from token, got %v", r.ExpiresAt)
		}
	})

	t.Run("Clone", func(t *testing.T) {
		r := &TokenRecord{UserID: "42", AccessToken: "a"}
		c := r.Clone()
		c.AccessToken = "b"

		if r.AccessToken != "a" {
			t.Error("clone should not share state with the original")
		}

		var nilRecord *TokenRecord
		if nilRecord.Clone() != nil {
			t.Error("clone of nil should be nil")
		}
	})
}

func TestTrackArtist(t *testing.T) {
	track := Track{Artists: []string{"Daft Punk", "Pharrell Williams"}}
	if got := track.Artist(); got != "Daft Punk, Pharrell Williams" {
		t.Errorf("Artist() = %q", got)
	}
}

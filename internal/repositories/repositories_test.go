package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/spotctl/internal/models"
	"github.com/desertthunder/spotctl/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func testRecord(userID, access string) *models.TokenRecord {
	return &models.TokenRecord{
		UserID:       userID,
		AccessToken:  access,
		RefreshToken: "refresh-" + userID,
		TokenType:    "Bearer",
		Scope:        "user-read-playback-state",
		ExpiresAt:    time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// testTokenStore runs the behavior every [TokenStore] backend must share.
func testTokenStore(t *testing.T, store TokenStore) {
	ctx := context.Background()

	t.Run("Get Missing", func(t *testing.T) {
		_, err := store.Get(ctx, "missing")
		if !errors.Is(err, shared.ErrTokenNotFound) {
			t.Errorf("expected ErrTokenNotFound, got %v", err)
		}
	})

	t.Run("Put And Get", func(t *testing.T) {
		want := testRecord("100", "access-1")
		if err := store.Put(ctx, want); err != nil {
			t.Fatalf("failed to put record: %v", err)
		}

		got, err := store.Get(ctx, "100")
		if err != nil {
			t.Fatalf("failed to get record: %v", err)
		}

		if got.AccessToken != want.AccessToken || got.RefreshToken != want.RefreshToken {
			t.Errorf("expected %+v, got %+v", want, got)
		}
		if got.Scope != want.Scope || got.TokenType != want.TokenType {
			t.Errorf("expected scope/type %s/%s, got %s/%s", want.Scope, want.TokenType, got.Scope, got.TokenType)
		}
		if !got.ExpiresAt.Equal(want.ExpiresAt) {
			t.Errorf("expected expiry %v, got %v", want.ExpiresAt, got.ExpiresAt)
		}
	})

	t.Run("Put Overwrites", func(t *testing.T) {
		if err := store.Put(ctx, testRecord("200", "old")); err != nil {
			t.Fatal(err)
		}
		if err := store.Put(ctx, testRecord("200", "new")); err != nil {
			t.Fatal(err)
		}

		got, err := store.Get(ctx, "200")
		if err != nil {
			t.Fatal(err)
		}
		if got.AccessToken != "new" {
			t.Errorf("expected overwritten access token, got %s", got.AccessToken)
		}
	})

	t.Run("Returned Record Is A Copy", func(t *testing.T) {
		if err := store.Put(ctx, testRecord("300", "original")); err != nil {
			t.Fatal(err)
		}

		got, _ := store.Get(ctx, "300")
		got.AccessToken = "mutated"

		again, _ := store.Get(ctx, "300")
		if again.AccessToken != "original" {
			t.Errorf("stored record was mutated through a returned pointer: %s", again.AccessToken)
		}
	})

	t.Run("Zero Expiry", func(t *testing.T) {
		r := testRecord("400", "access")
		r.ExpiresAt = time.Time{}
		if err := store.Put(ctx, r); err != nil {
			t.Fatal(err)
		}

		got, err := store.Get(ctx, "400")
		if err != nil {
			t.Fatal(err)
		}
		if !got.ExpiresAt.IsZero() {
			t.Errorf("expected zero expiry, got %v", got.ExpiresAt)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Put(ctx, testRecord("500", "access")); err != nil {
			t.Fatal(err)
		}
		if err := store.Delete(ctx, "500"); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}
		if _, err := store.Get(ctx, "500"); !errors.Is(err, shared.ErrTokenNotFound) {
			t.Errorf("expected ErrTokenNotFound after delete, got %v", err)
		}
		if err := store.Delete(ctx, "500"); err != nil {
			t.Errorf("deleting a missing record should not fail, got %v", err)
		}
	})

	t.Run("Put Requires User ID", func(t *testing.T) {
		if err := store.Put(ctx, testRecord("", "access")); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if err := store.Put(ctx, nil); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for nil record, got %v", err)
		}
	})
}

func TestMemoryTokenStore(t *testing.T) {
	store := NewMemoryTokenStore()
	testTokenStore(t, store)

	t.Run("Concurrent Access", func(t *testing.T) {
		ctx := context.Background()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				r := testRecord("concurrent", "access")
				r.AccessToken = r.AccessToken + string(rune('a'+i%26))
				store.Put(ctx, r)
				store.Get(ctx, "concurrent")
			}(i)
		}
		wg.Wait()

		if _, err := store.Get(ctx, "concurrent"); err != nil {
			t.Errorf("expected record after concurrent writes, got %v", err)
		}
	})
}

func TestSQLiteTokenStore(t *testing.T) {
	db := setupTestDB(t)
	store := NewSQLiteTokenStore(db)
	defer store.Close()

	testTokenStore(t, store)

	t.Run("Upsert Keeps A Single Row", func(t *testing.T) {
		ctx := context.Background()
		store.Put(ctx, testRecord("600", "a"))
		store.Put(ctx, testRecord("600", "b"))

		var count int
		if err := db.QueryRow("SELECT COUNT(*) FROM tokens WHERE user_id = ?", "600").Scan(&count); err != nil {
			t.Fatal(err)
		}
		if count != 1 {
			t.Errorf("expected 1 row, got %d", count)
		}
	})
}

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/kostumi/internal/db"
)

func TestGetJWTSecret(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	first, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}

	second, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("secret changed between calls: %q then %q", first, second)
	}
}

func TestSettingGenerateError(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	boom := errors.New("no entropy")
	_, err := setting(ctx, database, "anything", func() (string, error) { return "", boom })
	if !errors.Is(err, boom) {
		t.Errorf("expected generator error, got %v", err)
	}
}

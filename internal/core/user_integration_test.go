package core_test

import (
	"context"
	"errors"
	"testing"

	"giftbox-manager/internal/core"
)

func TestUser_AuthenticateRoundtrip(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()
	users := core.NewUserService(pool)

	created, err := users.CreateUser(ctx, "maria", "maria@example.com", "segredo123")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	u, err := users.Authenticate(ctx, "maria", "segredo123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if u.ID != created.ID {
		t.Errorf("Expected user %d, got %d", created.ID, u.ID)
	}

	if _, err := users.Authenticate(ctx, "maria", "errada"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := users.Authenticate(ctx, "ninguem", "segredo123"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	if _, err := users.CreateUser(ctx, "maria", "", "outra"); err == nil {
		t.Error("Expected duplicate username to be rejected")
	}
}

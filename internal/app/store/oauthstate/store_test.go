package oauthstate_test

import (
	"testing"
	"time"

	"github.com/fairwaylog/fairwaylog/internal/app/store/oauthstate"
	"github.com/fairwaylog/fairwaylog/internal/testutil"
)

func TestStore_SaveAndValidate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	state := "test-state-123"
	if err := store.Save(ctx, state, "google", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	valid, err := store.Validate(ctx, state, "google")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !valid {
		t.Error("expected state to be valid")
	}

	// One-time use: the same token must not validate twice.
	valid, err = store.Validate(ctx, state, "google")
	if err != nil {
		t.Fatalf("second Validate failed: %v", err)
	}
	if valid {
		t.Error("expected state to be consumed after first use")
	}
}

func TestStore_Validate_WrongProvider(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	state := "test-state-456"
	if err := store.Save(ctx, state, "google", time.Now().Add(10*time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	valid, err := store.Validate(ctx, state, "facebook")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if valid {
		t.Error("expected state bound to google to fail facebook validation")
	}
}

func TestStore_Validate_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	state := "test-state-expired"
	if err := store.Save(ctx, state, "google", time.Now().Add(-1*time.Minute)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	valid, err := store.Validate(ctx, state, "google")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if valid {
		t.Error("expected expired state to be invalid")
	}
}

func TestStore_Validate_Unknown(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	valid, err := store.Validate(ctx, "never-saved", "google")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if valid {
		t.Error("expected unknown state to be invalid")
	}
}

func TestStore_CleanupExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := oauthstate.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.Save(ctx, "stale-1", "google", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "stale-2", "facebook", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Save(ctx, "fresh", "google", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	removed, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	valid, err := store.Validate(ctx, "fresh", "google")
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if !valid {
		t.Error("fresh state should survive cleanup")
	}
}

package userstore_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	userstore "github.com/fairwaylog/fairwaylog/internal/app/store/users"
	"github.com/fairwaylog/fairwaylog/internal/testutil"
)

func TestStore_Register(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Register(ctx, "  Pat Golfer  ", "Pat@Example.COM", "s3cret-pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Name != "Pat Golfer" {
		t.Errorf("Name: got %q, want %q", created.Name, "Pat Golfer")
	}
	if created.Email != "pat@example.com" {
		t.Errorf("Email: got %q, want %q", created.Email, "pat@example.com")
	}
	if created.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if created.PasswordHash == "" || created.PasswordHash == "s3cret-pw" {
		t.Error("expected password to be hashed")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Register_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Register(ctx, "User One", "duplicate@example.com", "pw-one"); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	_, err := store.Register(ctx, "User Two", "Duplicate@Example.com", "pw-two")
	if err != userstore.ErrDuplicateEmail {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_Register_MissingFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Register(ctx, "", "blank@example.com", "pw"); err == nil {
		t.Error("expected error for blank name")
	}
	if _, err := store.Register(ctx, "No Email", "   ", "pw"); err == nil {
		t.Error("expected error for blank email")
	}
}

func TestStore_CheckPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Register(ctx, "Pat Golfer", "pat@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := store.CheckPassword(&created, "correct-horse"); err != nil {
		t.Errorf("expected match, got %v", err)
	}
	if err := store.CheckPassword(&created, "wrong-horse"); err != bcrypt.ErrMismatchedHashAndPassword {
		t.Errorf("expected bcrypt mismatch, got %v", err)
	}

	social := created
	social.PasswordHash = ""
	if err := store.CheckPassword(&social, "anything"); err != userstore.ErrNoLocalPassword {
		t.Errorf("expected ErrNoLocalPassword, got %v", err)
	}
}

func TestStore_GetByEmail_CaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Register(ctx, "Find Me", "FindMe@Example.COM", "pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	found, err := store.GetByEmail(ctx, "findme@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID: got %v, want %v", found.ID, created.ID)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_ResolveGoogle_CreatesThenFinds(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	profile := userstore.Profile{
		ProviderID: "google-12345",
		Name:       "Social Golfer",
		Email:      "Social@Example.com",
	}

	first, err := store.ResolveGoogle(ctx, profile)
	if err != nil {
		t.Fatalf("ResolveGoogle failed: %v", err)
	}
	if first.GoogleID != "google-12345" {
		t.Errorf("GoogleID: got %q, want %q", first.GoogleID, "google-12345")
	}
	if first.Email != "social@example.com" {
		t.Errorf("Email: got %q, want %q", first.Email, "social@example.com")
	}
	if first.HasPassword() {
		t.Error("social-only account should not have a password hash")
	}

	second, err := store.ResolveGoogle(ctx, profile)
	if err != nil {
		t.Fatalf("second ResolveGoogle failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected same account, got %v and %v", first.ID, second.ID)
	}
}

func TestStore_ResolveGoogle_LinksByEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	local, err := store.Register(ctx, "Local First", "link@example.com", "pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	resolved, err := store.ResolveGoogle(ctx, userstore.Profile{
		ProviderID: "google-link",
		Name:       "Local First",
		Email:      "link@example.com",
	})
	if err != nil {
		t.Fatalf("ResolveGoogle failed: %v", err)
	}
	if resolved.ID != local.ID {
		t.Errorf("expected provider to link to existing account %v, got %v", local.ID, resolved.ID)
	}

	// The stored document should now carry the provider ID.
	reloaded, err := store.GetByID(ctx, local.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if reloaded.GoogleID != "google-link" {
		t.Errorf("GoogleID: got %q, want %q", reloaded.GoogleID, "google-link")
	}
	if !reloaded.HasPassword() {
		t.Error("linking a provider must not drop the local credential")
	}
}

func TestStore_ResolveFacebook_Creates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	resolved, err := store.ResolveFacebook(ctx, userstore.Profile{
		ProviderID: "fb-777",
		Name:       "FB Golfer",
		Email:      "fb@example.com",
	})
	if err != nil {
		t.Fatalf("ResolveFacebook failed: %v", err)
	}
	if resolved.FacebookID != "fb-777" {
		t.Errorf("FacebookID: got %q, want %q", resolved.FacebookID, "fb-777")
	}
}

func TestStore_ClubRefs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user, err := store.Register(ctx, "Club Member", "member@example.com", "pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	clubID := primitive.NewObjectID()

	if err := store.AddClubRefs(ctx, user.ID, clubID, true); err != nil {
		t.Fatalf("AddClubRefs failed: %v", err)
	}

	reloaded, err := store.GetByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !reloaded.IsMemberOf(clubID) {
		t.Error("expected club in club_ids")
	}
	if len(reloaded.ManagedClubIDs) != 1 || reloaded.ManagedClubIDs[0] != clubID {
		t.Errorf("ManagedClubIDs: got %v, want [%v]", reloaded.ManagedClubIDs, clubID)
	}

	// Adding again must not duplicate.
	if err := store.AddClubRefs(ctx, user.ID, clubID, true); err != nil {
		t.Fatalf("second AddClubRefs failed: %v", err)
	}
	reloaded, _ = store.GetByID(ctx, user.ID)
	if len(reloaded.ClubIDs) != 1 {
		t.Errorf("expected 1 club ref, got %d", len(reloaded.ClubIDs))
	}

	if err := store.RemoveClubRefs(ctx, user.ID, clubID); err != nil {
		t.Fatalf("RemoveClubRefs failed: %v", err)
	}
	reloaded, _ = store.GetByID(ctx, user.ID)
	if reloaded.IsMemberOf(clubID) {
		t.Error("expected club removed from club_ids")
	}
	if len(reloaded.ManagedClubIDs) != 0 {
		t.Errorf("expected managed_club_ids emptied, got %v", reloaded.ManagedClubIDs)
	}
}

func TestStore_TransferManagedClub(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	from, err := store.Register(ctx, "Outgoing Manager", "from@example.com", "pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	to, err := store.Register(ctx, "Incoming Manager", "to@example.com", "pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	clubID := primitive.NewObjectID()

	if err := store.AddClubRefs(ctx, from.ID, clubID, true); err != nil {
		t.Fatalf("AddClubRefs failed: %v", err)
	}
	if err := store.AddClubRefs(ctx, to.ID, clubID, false); err != nil {
		t.Fatalf("AddClubRefs failed: %v", err)
	}

	if err := store.TransferManagedClub(ctx, from.ID, to.ID, clubID); err != nil {
		t.Fatalf("TransferManagedClub failed: %v", err)
	}

	fromAfter, _ := store.GetByID(ctx, from.ID)
	toAfter, _ := store.GetByID(ctx, to.ID)

	if len(fromAfter.ManagedClubIDs) != 0 {
		t.Errorf("outgoing manager still has managed_club_ids: %v", fromAfter.ManagedClubIDs)
	}
	if !fromAfter.IsMemberOf(clubID) {
		t.Error("outgoing manager should remain a plain member")
	}
	if len(toAfter.ManagedClubIDs) != 1 || toAfter.ManagedClubIDs[0] != clubID {
		t.Errorf("incoming manager ManagedClubIDs: got %v, want [%v]", toAfter.ManagedClubIDs, clubID)
	}
}

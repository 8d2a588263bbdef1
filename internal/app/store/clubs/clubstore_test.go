package clubstore_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	clubstore "github.com/fairwaylog/fairwaylog/internal/app/store/clubs"
	userstore "github.com/fairwaylog/fairwaylog/internal/app/store/users"
	"github.com/fairwaylog/fairwaylog/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db, zap.NewNop())
	users := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	creator, err := users.Register(ctx, "Club Founder", "founder@example.com", "pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	club, err := store.Create(ctx, "  <b>Sunset</b> Golf Club  ", "A <i>friendly</i> club", creator.ID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if club.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if club.Name != "Sunset Golf Club" {
		t.Errorf("Name: got %q, want sanitized %q", club.Name, "Sunset Golf Club")
	}
	if club.Description != "A friendly club" {
		t.Errorf("Description: got %q, want %q", club.Description, "A friendly club")
	}
	if club.ManagerID != creator.ID {
		t.Errorf("ManagerID: got %v, want %v", club.ManagerID, creator.ID)
	}
	if len(club.MemberIDs) != 1 || club.MemberIDs[0] != creator.ID {
		t.Errorf("MemberIDs: got %v, want [%v]", club.MemberIDs, creator.ID)
	}

	// Creator's user document must carry both references.
	reloaded, err := users.GetByID(ctx, creator.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !reloaded.IsMemberOf(club.ID) {
		t.Error("creator missing club in club_ids")
	}
	if len(reloaded.ManagedClubIDs) != 1 || reloaded.ManagedClubIDs[0] != club.ID {
		t.Errorf("ManagedClubIDs: got %v, want [%v]", reloaded.ManagedClubIDs, club.ID)
	}
}

func TestStore_Create_BlankName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "   ", "desc", primitive.NewObjectID()); err != clubstore.ErrNameRequired {
		t.Errorf("expected ErrNameRequired for blank club name, got %v", err)
	}
}

func TestStore_JoinAndLeave(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db, zap.NewNop())
	users := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser(ctx, "Manager", "manager@example.com")
	club := fixtures.CreateClub(ctx, "Round Trip GC", manager)
	joiner, err := users.Register(ctx, "Joiner", "joiner@example.com", "pw")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := store.Join(ctx, club.ID, joiner.ID); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	after, err := store.GetByID(ctx, club.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !after.HasMember(joiner.ID) {
		t.Error("expected joiner in member_ids")
	}
	ju, _ := users.GetByID(ctx, joiner.ID)
	if !ju.IsMemberOf(club.ID) {
		t.Error("expected club in joiner's club_ids")
	}

	// Joining twice is rejected.
	if err := store.Join(ctx, club.ID, joiner.ID); err != clubstore.ErrAlreadyMember {
		t.Errorf("expected ErrAlreadyMember, got %v", err)
	}

	if err := store.Leave(ctx, club.ID, joiner.ID); err != nil {
		t.Fatalf("Leave failed: %v", err)
	}

	after, _ = store.GetByID(ctx, club.ID)
	if after.HasMember(joiner.ID) {
		t.Error("expected joiner removed from member_ids")
	}
	ju, _ = users.GetByID(ctx, joiner.ID)
	if ju.IsMemberOf(club.ID) {
		t.Error("expected club removed from joiner's club_ids")
	}

	// Leaving again is NotAMember.
	if err := store.Leave(ctx, club.ID, joiner.ID); err != clubstore.ErrNotAMember {
		t.Errorf("expected ErrNotAMember, got %v", err)
	}
}

func TestStore_Leave_ManagerBlocked(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser(ctx, "Manager", "manager@example.com")
	club := fixtures.CreateClub(ctx, "Managed GC", manager)

	// Blocked even when the manager is the sole member.
	if err := store.Leave(ctx, club.ID, manager.ID); err != clubstore.ErrManagerCannotLeave {
		t.Errorf("expected ErrManagerCannotLeave, got %v", err)
	}

	other := fixtures.CreateUser(ctx, "Other", "other@example.com")
	fixtures.AddMember(ctx, club, other)
	if err := store.Leave(ctx, club.ID, manager.ID); err != clubstore.ErrManagerCannotLeave {
		t.Errorf("expected ErrManagerCannotLeave with other members, got %v", err)
	}
}

func TestStore_RemoveMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db, zap.NewNop())
	users := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser(ctx, "Manager", "manager@example.com")
	club := fixtures.CreateClub(ctx, "Eviction GC", manager)
	member := fixtures.CreateUser(ctx, "Member", "member@example.com")
	fixtures.AddMember(ctx, club, member)

	if err := store.RemoveMember(ctx, club.ID, manager.ID); err != clubstore.ErrCannotRemoveManager {
		t.Errorf("expected ErrCannotRemoveManager, got %v", err)
	}

	if err := store.RemoveMember(ctx, club.ID, member.ID); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	after, _ := store.GetByID(ctx, club.ID)
	if after.HasMember(member.ID) {
		t.Error("expected member removed")
	}
	mu, _ := users.GetByID(ctx, member.ID)
	if mu.IsMemberOf(club.ID) {
		t.Error("expected club removed from member's club_ids")
	}

	if err := store.RemoveMember(ctx, club.ID, member.ID); err != clubstore.ErrNotAMember {
		t.Errorf("expected ErrNotAMember, got %v", err)
	}
}

func TestStore_TransferManagement(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db, zap.NewNop())
	users := userstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser(ctx, "Old Manager", "old@example.com")
	club := fixtures.CreateClub(ctx, "Handover GC", manager)
	successor := fixtures.CreateUser(ctx, "New Manager", "new@example.com")

	// Target must already be a member.
	if err := store.TransferManagement(ctx, club.ID, successor.ID); err != clubstore.ErrNotAMember {
		t.Errorf("expected ErrNotAMember, got %v", err)
	}

	fixtures.AddMember(ctx, club, successor)
	if err := store.TransferManagement(ctx, club.ID, successor.ID); err != nil {
		t.Fatalf("TransferManagement failed: %v", err)
	}

	after, _ := store.GetByID(ctx, club.ID)
	if after.ManagerID != successor.ID {
		t.Errorf("ManagerID: got %v, want %v", after.ManagerID, successor.ID)
	}
	if !after.HasMember(manager.ID) {
		t.Error("old manager should remain a member")
	}

	oldU, _ := users.GetByID(ctx, manager.ID)
	newU, _ := users.GetByID(ctx, successor.ID)
	if len(oldU.ManagedClubIDs) != 0 {
		t.Errorf("old manager still has managed_club_ids: %v", oldU.ManagedClubIDs)
	}
	if len(newU.ManagedClubIDs) != 1 || newU.ManagedClubIDs[0] != club.ID {
		t.Errorf("new manager ManagedClubIDs: got %v, want [%v]", newU.ManagedClubIDs, club.ID)
	}

	// The old manager can now leave.
	if err := store.Leave(ctx, club.ID, manager.ID); err != nil {
		t.Fatalf("Leave after transfer failed: %v", err)
	}
}

func TestStore_ListForMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	member := fixtures.CreateUser(ctx, "Member", "member@example.com")
	other := fixtures.CreateUser(ctx, "Other", "other@example.com")

	fixtures.CreateClub(ctx, "Alpha GC", member)
	fixtures.CreateClub(ctx, "Private GC", other)
	fixtures.CreateClub(ctx, "Bravo GC", member)

	clubs, err := store.ListForMember(ctx, member.ID)
	if err != nil {
		t.Fatalf("ListForMember failed: %v", err)
	}
	if len(clubs) != 2 {
		t.Fatalf("expected 2 clubs, got %d", len(clubs))
	}
	for _, c := range clubs {
		if c.Name == "Private GC" {
			t.Error("listing leaked a club the user does not belong to")
		}
	}
}

func TestStore_UpdateInfo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clubstore.New(db, zap.NewNop())
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	manager := fixtures.CreateUser(ctx, "Manager", "manager@example.com")
	club := fixtures.CreateClub(ctx, "Old Name GC", manager)

	if err := store.UpdateInfo(ctx, club.ID, "New Name GC", "<p>Refreshed</p>"); err != nil {
		t.Fatalf("UpdateInfo failed: %v", err)
	}

	after, _ := store.GetByID(ctx, club.ID)
	if after.Name != "New Name GC" {
		t.Errorf("Name: got %q, want %q", after.Name, "New Name GC")
	}
	if after.Description != "Refreshed" {
		t.Errorf("Description: got %q, want sanitized %q", after.Description, "Refreshed")
	}

	if err := store.UpdateInfo(ctx, primitive.NewObjectID(), "Ghost GC", ""); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments for unknown club, got %v", err)
	}

	// Blank and sanitize-to-empty names are rejected without touching the doc.
	if err := store.UpdateInfo(ctx, club.ID, "   ", ""); err != clubstore.ErrNameRequired {
		t.Errorf("expected ErrNameRequired for blank name, got %v", err)
	}
	if err := store.UpdateInfo(ctx, club.ID, "<b></b>", ""); err != clubstore.ErrNameRequired {
		t.Errorf("expected ErrNameRequired for markup-only name, got %v", err)
	}
	after, _ = store.GetByID(ctx, club.ID)
	if after.Name != "New Name GC" {
		t.Errorf("Name after rejected updates: got %q, want %q", after.Name, "New Name GC")
	}
}

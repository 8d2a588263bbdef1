package indexes_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/fairwaylog/fairwaylog/internal/app/system/indexes"
	"github.com/fairwaylog/fairwaylog/internal/testutil"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("first EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesUserIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	cur, err := db.Collection("users").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	indexNames := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			indexNames[name] = true
		}
	}

	for _, want := range []string{"uniq_users_email", "idx_users_google_id", "idx_users_facebook_id"} {
		if !indexNames[want] {
			t.Errorf("expected index %q to exist, have %v", want, indexNames)
		}
	}
}

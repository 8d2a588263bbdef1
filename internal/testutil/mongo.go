// internal/testutil/mongo.go
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/fairwaylog/fairwaylog/internal/app/system/indexes"
)

// testMongoURIEnv points tests at a MongoDB instance. Tests that need a
// database skip when nothing is listening.
const testMongoURIEnv = "FAIRWAYLOG_TEST_MONGO_URI"

const defaultTestMongoURI = "mongodb://localhost:27017"

// SetupTestDB connects to the test MongoDB instance and returns a database
// with a unique name for this test. The database is dropped and the client
// disconnected when the test finishes. Skips the test when no MongoDB is
// reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv(testMongoURIEnv)
	if uri == "" {
		uri = defaultTestMongoURI
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Skipf("skipping: cannot connect to test MongoDB at %s: %v", uri, err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("skipping: test MongoDB at %s not reachable: %v", uri, err)
	}

	dbName := fmt.Sprintf("fairwaylog_test_%d", time.Now().UnixNano())
	db := client.Database(dbName)

	if err := indexes.EnsureAll(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		t.Fatalf("failed to ensure indexes on test database: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	return db
}

// TestContext returns a context with a generous timeout for test database
// operations.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

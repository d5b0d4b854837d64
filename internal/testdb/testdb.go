// Package testdb boots a disposable MongoDB container for package test
// suites. Each test binary starts one container in its TestMain and drops all
// collections between tests.
package testdb

import (
	"context"
	"os"
	"testing"

	"github.com/Soobster/leaderboard-main-sub000/internal/mongodb"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const TestDBName = "testDb"

type TestDB struct {
	Client *mongo.Client
	DB     *mongodb.DB

	container testcontainers.Container
}

// Start launches a mongo:7.0 container and connects to it. The returned
// cleanup must run before the test binary exits.
func Start(ctx context.Context) (*TestDB, func(), error) {
	os.Setenv("MONGODB_DB", TestDBName)

	req := testcontainers.ContainerRequest{
		Image:        "mongo:7.0",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor:   wait.ForListeningPort("27017/tcp"),
	}
	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, nil, err
	}

	endpoint, err := mongoC.Endpoint(ctx, "")
	if err != nil {
		_ = mongoC.Terminate(ctx)
		return nil, nil, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI("mongodb://"+endpoint))
	if err != nil {
		_ = mongoC.Terminate(ctx)
		return nil, nil, err
	}

	tdb := &TestDB{
		Client:    client,
		DB:        mongodb.NewDB(client),
		container: mongoC,
	}
	cleanup := func() {
		_ = client.Disconnect(ctx)
		_ = mongoC.Terminate(ctx)
	}
	return tdb, cleanup, nil
}

// Reset drops every collection so tests start from a clean database.
func (tdb *TestDB) Reset(t *testing.T) {
	t.Helper()

	ctx := context.Background()
	db := tdb.Client.Database(TestDBName)

	collections, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		t.Fatalf("failed to list collections: %v", err)
	}

	for _, coll := range collections {
		if err := db.Collection(coll).Drop(ctx); err != nil {
			t.Fatalf("failed to drop collection %s: %v", coll, err)
		}
	}
}

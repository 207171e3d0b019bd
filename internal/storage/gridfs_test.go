package storage

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TestGridFSRoundTrip needs a running MongoDB at TEST_MONGO_URI.
func TestGridFSRoundTrip(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	ctx := context.Background()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	db := client.Database("yatube_test_" + strings.ReplaceAll(uuid.NewString(), "-", ""))
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	store, err := NewGridFS(db)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "posts/a.gif", strings.NewReader("first")))
	require.NoError(t, store.Save(ctx, "posts/a.gif", strings.NewReader("second")))

	rc, err := store.Open(ctx, "posts/a.gif")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	require.NoError(t, store.Delete(ctx, "posts/a.gif"))
	_, err = store.Open(ctx, "posts/a.gif")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Open(ctx, "../escape")
	assert.ErrorIs(t, err, ErrInvalidName)
}

package firestore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/remote"
)

func TestNew_RequiresProject(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.Error(t, err)
}

var _ remote.Store = (*Store)(nil)

// Runs against the Firestore emulator when FIRESTORE_EMULATOR_HOST is set.
func TestStore_Emulator(t *testing.T) {
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := New(ctx, Config{ProjectID: "finboard-test"})
	require.NoError(t, err)
	defer s.Close()

	user := "emulator-" + time.Now().Format("150405.000000")
	require.NoError(t, s.Put(ctx, user, "cards", "k1", remote.Document{"id": "k1", "name": "Visa"}))

	doc, err := s.Get(ctx, user, "cards", "k1")
	require.NoError(t, err)
	assert.Equal(t, "Visa", doc["name"])

	docs, err := s.List(ctx, user, "cards")
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	require.NoError(t, s.Delete(ctx, user, "cards", "k1"))
	_, err = s.Get(ctx, user, "cards", "k1")
	assert.ErrorIs(t, err, remote.ErrNotFound)
}

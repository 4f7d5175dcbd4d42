package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/senarath/smartscout/core"
)

func TestInMemoryStoreLifecycle(t *testing.T) {
	store := NewInMemoryStore()

	created, err := store.Create("s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", created.ID)

	_, err = store.Create("s1")
	assert.Error(t, err, "duplicate IDs are rejected")

	require.NoError(t, store.AppendEvent("s1", core.NewUserMessageEvent("t1", "hello")))

	got, err := store.Get("s1")
	require.NoError(t, err)
	assert.Len(t, got.GetEvents(), 1)
}

func TestInMemoryStoreGeneratesID(t *testing.T) {
	store := NewInMemoryStore()
	sess, err := store.Create("")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
}

func TestInMemoryStoreUnknownSession(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Get("missing")
	assert.Error(t, err)

	err = store.AppendEvent("missing", core.NewUserMessageEvent("t1", "hello"))
	assert.Error(t, err)
}

func TestInMemoryStoreReturnsClones(t *testing.T) {
	store := NewInMemoryStore()
	_, err := store.Create("s1")
	require.NoError(t, err)
	require.NoError(t, store.AppendEvent("s1", core.NewUserMessageEvent("t1", "hello")))

	first, err := store.Get("s1")
	require.NoError(t, err)
	first.AddEvent(core.NewUserMessageEvent("t1", "mutated locally"))

	second, err := store.Get("s1")
	require.NoError(t, err)
	assert.Len(t, second.GetEvents(), 1, "mutating a returned session must not affect the store")
}

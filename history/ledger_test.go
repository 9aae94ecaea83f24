package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quickscan-service/storage"
)

func TestAppend_DeduplicatesAndKeepsOrder(t *testing.T) {
	l := New(storage.NewMemStore())

	require.NoError(t, l.Append("111"))
	require.NoError(t, l.Append("222"))
	require.NoError(t, l.Append("111"))
	require.NoError(t, l.Append("333"))
	require.NoError(t, l.Append("222"))

	codes, err := l.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "222", "333"}, codes)
}

func TestClear_ThenListIsEmpty(t *testing.T) {
	l := New(storage.NewMemStore())
	require.NoError(t, l.Append("111"))
	require.NoError(t, l.Clear())

	codes, err := l.List()
	require.NoError(t, err)
	assert.Empty(t, codes)

	// The ledger still accepts new codes after a clear.
	require.NoError(t, l.Append("222"))
	codes, err = l.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"222"}, codes)
}

func TestHistorySurvivesReload(t *testing.T) {
	kv := storage.NewMemStore()
	require.NoError(t, New(kv).Append("111"))

	// A fresh ledger over the same store sees the persisted set.
	codes, err := New(kv).List()
	require.NoError(t, err)
	assert.Equal(t, []string{"111"}, codes)
}

func TestAppendPropagatesStorageFailure(t *testing.T) {
	kv := storage.NewMemStore()
	kv.WriteErr = storage.ErrUnavailable
	err := New(kv).Append("111")
	assert.ErrorIs(t, err, storage.ErrUnavailable)
}

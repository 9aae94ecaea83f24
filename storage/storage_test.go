package storage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_RoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	got, err := fs.Read(KeyProducts)
	assert.NoError(t, err)
	assert.Nil(t, got, "unwritten key should read as nil")

	require.NoError(t, fs.Write(KeyProducts, []byte(`[{"id":"p1"}]`)))

	got, err = fs.Read(KeyProducts)
	assert.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"p1"}]`), got)

	// Overwrite wins.
	require.NoError(t, fs.Write(KeyProducts, []byte(`[]`)))
	got, err = fs.Read(KeyProducts)
	assert.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)
}

func TestFileStore_WriteFailureIsUnavailable(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	// A key that resolves to an unwritable path.
	err = fs.Write("missing/sub/key", []byte("x"))
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestMemStore_InjectedErrors(t *testing.T) {
	ms := NewMemStore()
	require.NoError(t, ms.Write("k", []byte("v")))

	ms.ReadErr = errors.New("backend down")
	_, err := ms.Read("k")
	assert.Error(t, err)

	ms.ReadErr = nil
	ms.WriteErr = errors.New("backend down")
	assert.Error(t, ms.Write("k", []byte("w")))

	// The failed write must not have happened.
	ms.WriteErr = nil
	got, err := ms.Read("k")
	assert.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ Source = (*WedgeSource)(nil)

func wedgeDevice(t *testing.T, keystrokes string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wedge")
	require.NoError(t, os.WriteFile(path, []byte(keystrokes), 0o644))
	return path
}

func TestWedgeSource_TerminatedCodeReachesHandler(t *testing.T) {
	path := wedgeDevice(t, "4006381333931\n")

	rec := &codeRecorder{}
	src := NewWedgeSource(path, WedgeConfig{}, nil)
	require.NoError(t, src.Start(context.Background(), rec.record))
	defer func() {
		_ = src.Stop()
	}()

	assert.Eventually(t, func() bool {
		got := rec.snapshot()
		return len(got) == 1 && got[0] == "4006381333931"
	}, time.Second, 5*time.Millisecond)
}

func TestWedgeSource_TrailingKeystrokesFlushOnInactivity(t *testing.T) {
	// No terminator after the last code; only the idle flush can cut it.
	path := wedgeDevice(t, "111\n222")

	rec := &codeRecorder{}
	src := NewWedgeSource(path, WedgeConfig{IdleFlush: 20 * time.Millisecond}, nil)
	require.NoError(t, src.Start(context.Background(), rec.record))
	defer func() {
		_ = src.Stop()
	}()

	assert.Eventually(t, func() bool {
		got := rec.snapshot()
		return len(got) == 2 && got[0] == "111" && got[1] == "222"
	}, time.Second, 5*time.Millisecond)
}

func TestWedgeSource_StopDiscardsPartialCode(t *testing.T) {
	path := wedgeDevice(t, "111")

	rec := &codeRecorder{}
	src := NewWedgeSource(path, WedgeConfig{IdleFlush: time.Minute}, nil)
	require.NoError(t, src.Start(context.Background(), rec.record))

	// Give the read loop time to buffer the keystrokes, then stop
	// before the idle flush could fire.
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, src.Stop())

	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.snapshot())
	assert.ErrorIs(t, src.Stop(), ErrNotRunning)
}

func TestAdapter_DrivesWedgeSource(t *testing.T) {
	w := stdinPipe(t)

	rec := &codeRecorder{}
	src := NewWedgeSource("-", WedgeConfig{IdleFlush: 20 * time.Millisecond}, nil)
	a := NewAdapter(src, rec.record, fastConfig(), nil)

	require.NoError(t, a.Start(context.Background()))
	assert.Equal(t, StateScanning, a.State())

	_, err := w.WriteString("4006381333931\n")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		got := rec.snapshot()
		return len(got) == 1 && got[0] == "4006381333931"
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, a.Stop())
	assert.Equal(t, StateIdle, a.State())
}

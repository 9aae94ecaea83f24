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

func stdinPipe(t *testing.T) *os.File {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	old := os.Stdin
	os.Stdin = r
	t.Cleanup(func() {
		os.Stdin = old
		_ = r.Close()
		_ = w.Close()
	})
	return w
}

func TestReaderSource_DeliversLinesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device")
	require.NoError(t, os.WriteFile(path, []byte("4006381333931\n\n222\n"), 0o644))

	rec := &codeRecorder{}
	src := NewReaderSource(path)
	require.NoError(t, src.Start(context.Background(), rec.record))
	defer func() {
		_ = src.Stop()
	}()

	assert.Eventually(t, func() bool {
		got := rec.snapshot()
		return len(got) == 2 && got[0] == "4006381333931" && got[1] == "222"
	}, time.Second, 5*time.Millisecond)
}

func TestReaderSource_StdinLinesSurviveRestart(t *testing.T) {
	w := stdinPipe(t)

	rec := &codeRecorder{}
	src := NewReaderSource("-")
	require.NoError(t, src.Start(context.Background(), rec.record))

	_, err := w.WriteString("111\n")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		return len(rec.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, src.Stop())
	require.NoError(t, src.Start(context.Background(), rec.record))

	// The line typed after the restart must reach the new session, not
	// vanish into a reader left over from the previous one.
	_, err = w.WriteString("222\n")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		got := rec.snapshot()
		return len(got) == 2 && got[1] == "222"
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, src.Stop())
}

func TestReaderSource_StdinStoppedSessionDropsInput(t *testing.T) {
	w := stdinPipe(t)

	rec := &codeRecorder{}
	src := NewReaderSource("-")
	require.NoError(t, src.Start(context.Background(), rec.record))
	require.NoError(t, src.Stop())

	_, err := w.WriteString("999\n")
	require.NoError(t, err)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, rec.snapshot())

	require.NoError(t, src.Start(context.Background(), rec.record))
	_, err = w.WriteString("111\n")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		got := rec.snapshot()
		return len(got) == 1 && got[0] == "111"
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, src.Stop())
}

func TestReaderSource_StopWhenIdleReturnsNotRunning(t *testing.T) {
	src := NewReaderSource("-")
	assert.ErrorIs(t, src.Stop(), ErrNotRunning)
}

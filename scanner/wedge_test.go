package scanner

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type codeRecorder struct {
	mu    sync.Mutex
	codes []string
}

func (r *codeRecorder) record(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = append(r.codes, code)
}

func (r *codeRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.codes...)
}

func feed(w *Wedge, s string) {
	for _, r := range s {
		w.Key(r)
	}
}

func TestWedge_TerminatorFlushesOneCode(t *testing.T) {
	rec := &codeRecorder{}
	w := NewWedge(rec.record, WedgeConfig{}, nil)
	w.SetEnabled(true)

	feed(w, "4006381333931\n")
	assert.Equal(t, []string{"4006381333931"}, rec.snapshot())
}

func TestWedge_TerminatorOnEmptyBufferEmitsNothing(t *testing.T) {
	rec := &codeRecorder{}
	w := NewWedge(rec.record, WedgeConfig{}, nil)
	w.SetEnabled(true)

	w.Key('\n')
	w.Key('\n')
	assert.Empty(t, rec.snapshot())
}

func TestWedge_InactivityFlushes(t *testing.T) {
	rec := &codeRecorder{}
	w := NewWedge(rec.record, WedgeConfig{IdleFlush: 20 * time.Millisecond}, nil)
	w.SetEnabled(true)

	feed(w, "111")
	assert.Eventually(t, func() bool {
		got := rec.snapshot()
		return len(got) == 1 && got[0] == "111"
	}, time.Second, 5*time.Millisecond)

	// The flush consumed the buffer; nothing more comes out.
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, rec.snapshot(), 1)
}

func TestWedge_DisabledDropsInput(t *testing.T) {
	rec := &codeRecorder{}
	w := NewWedge(rec.record, WedgeConfig{}, nil)

	feed(w, "111\n")
	assert.Empty(t, rec.snapshot())
}

func TestWedge_DisablingDiscardsBuffer(t *testing.T) {
	rec := &codeRecorder{}
	w := NewWedge(rec.record, WedgeConfig{}, nil)
	w.SetEnabled(true)

	feed(w, "111")
	w.SetEnabled(false)
	w.SetEnabled(true)
	w.Key('\n')

	assert.Empty(t, rec.snapshot())
}

func TestWedge_SeparateScansStaySeparate(t *testing.T) {
	rec := &codeRecorder{}
	w := NewWedge(rec.record, WedgeConfig{}, nil)
	w.SetEnabled(true)

	feed(w, "111\n222\n")
	assert.Equal(t, []string{"111", "222"}, rec.snapshot())
}

package scanner

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// WedgeConfig tunes the keyboard-wedge variant.
type WedgeConfig struct {
	// Terminator flushes the buffer as one code. Defaults to '\n'.
	Terminator rune
	// IdleFlush flushes a non-empty buffer after this much keystroke
	// silence, for scanners that send no terminator. Defaults to 300ms.
	IdleFlush time.Duration
}

// Wedge accumulates keystrokes from a USB keyboard-wedge scanner and
// flushes complete codes to the handler. Input is dropped while the
// wedge is disabled.
type Wedge struct {
	mu      sync.Mutex
	buf     []rune
	enabled bool
	timer   *time.Timer
	handler func(code string)
	cfg     WedgeConfig
	log     *zap.Logger
}

func NewWedge(handler func(code string), cfg WedgeConfig, log *zap.Logger) *Wedge {
	if cfg.Terminator == 0 {
		cfg.Terminator = '\n'
	}
	if cfg.IdleFlush <= 0 {
		cfg.IdleFlush = 300 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Wedge{handler: handler, cfg: cfg, log: log}
}

// SetEnabled toggles the wedge. Disabling discards any buffered
// keystrokes and pending flush.
func (w *Wedge) SetEnabled(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.enabled = enabled
	if !enabled {
		w.buf = nil
		w.stopTimerLocked()
	}
}

func (w *Wedge) Enabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.enabled
}

// Key feeds one keystroke. The terminator, or inactivity, flushes the
// buffer as a single decoded code.
func (w *Wedge) Key(r rune) {
	w.mu.Lock()
	if !w.enabled {
		w.mu.Unlock()
		return
	}
	if r == w.cfg.Terminator {
		code := w.takeLocked()
		w.mu.Unlock()
		w.emit(code)
		return
	}
	w.buf = append(w.buf, r)
	w.stopTimerLocked()
	w.timer = time.AfterFunc(w.cfg.IdleFlush, w.idleFlush)
	w.mu.Unlock()
}

func (w *Wedge) idleFlush() {
	w.mu.Lock()
	if !w.enabled {
		w.mu.Unlock()
		return
	}
	code := w.takeLocked()
	w.mu.Unlock()
	if code != "" {
		w.log.Debug("wedge idle flush", zap.String("code", code))
	}
	w.emit(code)
}

// takeLocked drains the buffer and cancels the pending flush.
func (w *Wedge) takeLocked() string {
	code := string(w.buf)
	w.buf = nil
	w.stopTimerLocked()
	return code
}

func (w *Wedge) stopTimerLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

func (w *Wedge) emit(code string) {
	if code == "" {
		return
	}
	w.handler(code)
}

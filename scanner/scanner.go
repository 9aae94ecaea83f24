// Package scanner owns the barcode device lifecycle. The Adapter wraps
// a Source (camera feed or serial/wedge reader) behind an explicit
// Idle/Scanning/Error state machine and guarantees at most one active
// capture session.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrDeviceUnavailable covers missing devices, denied permissions
	// and acquisition timeouts.
	ErrDeviceUnavailable = errors.New("scan device unavailable")
	// ErrAlreadyScanning rejects a second Start while a capture session
	// is active.
	ErrAlreadyScanning = errors.New("scanner already scanning")
	// ErrNotRunning is what a Source returns when stopped while idle.
	// The Adapter swallows it.
	ErrNotRunning = errors.New("scanner not running")

	errClosed = errors.New("scanner adapter closed")
)

// Source is the device-facing contract: a capture backend that decodes
// frames and reports each decoded code. Implementations only surface
// successful decodes; frames with no code in them are not errors and
// never reach the Adapter.
type Source interface {
	// Start acquires the device and begins decoding. It blocks until the
	// device is acquired or ctx is done. onDetect is invoked once per
	// decoded code, from the source's own goroutine, until Stop.
	Start(ctx context.Context, onDetect func(code string)) error
	// Stop releases the device. Returns ErrNotRunning when not started.
	Stop() error
}

type State int32

const (
	StateIdle State = iota
	StateScanning
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateError:
		return "error"
	}
	return "unknown"
}

type Config struct {
	// AutoClose stops the session after the first detection.
	AutoClose bool
	// AcquireTimeout bounds device acquisition; expiry surfaces as
	// ErrDeviceUnavailable. Defaults to 5s.
	AcquireTimeout time.Duration
	// SettleDelay is the pause between stop and start during Restart,
	// letting capture hardware release. Defaults to 500ms.
	SettleDelay time.Duration
}

// Adapter drives a Source through Idle -> Scanning -> Idle transitions.
// Start/Stop/Restart/Close are serialized by a mutex so teardown racing
// an in-flight Start still ends with the device released.
type Adapter struct {
	mu      sync.Mutex
	src     Source
	handler func(code string)
	cfg     Config
	log     *zap.Logger
	state   atomic.Int32
	closed  bool
}

// NewAdapter wires a Source to a detection handler. The handler runs on
// the source's goroutine; each detection is delivered exactly once.
func NewAdapter(src Source, handler func(code string), cfg Config, log *zap.Logger) *Adapter {
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = 5 * time.Second
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 500 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{src: src, handler: handler, cfg: cfg, log: log}
}

func (a *Adapter) State() State {
	return State(a.state.Load())
}

// Start acquires the device and begins emitting detections. A Start
// while already scanning is rejected with ErrAlreadyScanning and never
// opens a second capture session.
func (a *Adapter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, errClosed)
	}
	if a.State() == StateScanning {
		return ErrAlreadyScanning
	}

	acquireCtx, cancel := context.WithTimeout(ctx, a.cfg.AcquireTimeout)
	defer cancel()

	if err := a.src.Start(acquireCtx, a.onDetect); err != nil {
		a.state.Store(int32(StateError))
		a.log.Warn("scanner start failed", zap.Error(err))
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	a.state.Store(int32(StateScanning))
	a.log.Info("scanner started")
	return nil
}

// Stop ends the capture session. Stopping an idle adapter is a no-op;
// a "not running" condition from the source is swallowed. The state is
// Idle afterwards regardless of the source's stop outcome.
func (a *Adapter) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopLocked()
}

func (a *Adapter) stopLocked() error {
	if a.State() != StateScanning {
		return nil
	}
	err := a.src.Stop()
	a.state.Store(int32(StateIdle))
	if err != nil && !errors.Is(err, ErrNotRunning) {
		return err
	}
	a.log.Info("scanner stopped")
	return nil
}

// Restart stops, waits out the settle delay, then starts again. A stop
// failure is downgraded to a warning and does not block the start.
func (a *Adapter) Restart(ctx context.Context) error {
	if err := a.Stop(); err != nil {
		a.log.Warn("stop failed during restart, starting anyway", zap.Error(err))
	}
	select {
	case <-time.After(a.cfg.SettleDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	return a.Start(ctx)
}

// Close tears the adapter down. Any session opened by a Start, even one
// racing Close, ends with the device released; further Starts fail.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	return a.stopLocked()
}

func (a *Adapter) onDetect(code string) {
	// Detections arriving after Stop are dropped rather than double-fired.
	if a.State() != StateScanning {
		return
	}
	a.log.Info("code detected", zap.String("code", code))
	a.handler(code)
	if a.cfg.AutoClose {
		if err := a.Stop(); err != nil {
			a.log.Warn("auto-close stop failed", zap.Error(err))
		}
	}
}

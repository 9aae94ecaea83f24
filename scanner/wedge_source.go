package scanner

import (
	"bufio"
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
)

// WedgeSource is a Source over a keyboard-wedge device: it reads raw
// runes from the device and lets the Wedge cut them into codes on the
// terminator or after keystroke silence. Use it for wedge scanners that
// type partial codes with no terminator; ReaderSource covers
// line-oriented devices.
type WedgeSource struct {
	mu       sync.Mutex
	path     string
	wedge    *Wedge
	file     *os.File
	onDetect func(string)
	running  bool
	loop     bool
}

func NewWedgeSource(path string, cfg WedgeConfig, log *zap.Logger) *WedgeSource {
	s := &WedgeSource{path: path}
	s.wedge = NewWedge(s.deliver, cfg, log)
	return s
}

func (s *WedgeSource) Start(ctx context.Context, onDetect func(code string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyScanning
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.path == "-" {
		// Stdin cannot be reopened; one shared read loop feeds the
		// wedge, which only buffers while enabled.
		if !s.loop {
			s.loop = true
			go s.read(bufio.NewReader(os.Stdin), nil)
		}
	} else {
		f, err := os.Open(s.path)
		if err != nil {
			return err
		}
		s.file = f
		go s.read(bufio.NewReader(f), f)
	}

	s.onDetect = onDetect
	s.running = true
	s.wedge.SetEnabled(true)
	return nil
}

func (s *WedgeSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrNotRunning
	}
	s.running = false
	s.onDetect = nil
	// Disabling discards the partial buffer and pending idle flush.
	s.wedge.SetEnabled(false)
	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}
	return nil
}

func (s *WedgeSource) read(r *bufio.Reader, f *os.File) {
	for {
		ch, _, err := r.ReadRune()
		if err != nil {
			return
		}
		s.mu.Lock()
		feed := f == nil || f == s.file
		s.mu.Unlock()
		if feed {
			s.wedge.Key(ch)
		}
	}
}

// deliver hands a flushed code to the current session's handler.
func (s *WedgeSource) deliver(code string) {
	s.mu.Lock()
	cb := s.onDetect
	s.mu.Unlock()
	if cb != nil {
		cb(code)
	}
}

package scanner

import (
	"bufio"
	"context"
	"os"
	"strings"
	"sync"
)

// ReaderSource is a Source over a line-oriented device: a serial barcode
// reader, a named pipe, or stdin ("-"). Each non-empty line is one
// decoded code. It stands in for a camera backend on headless installs.
type ReaderSource struct {
	mu        sync.Mutex
	path      string
	file      *os.File
	onDetect  func(string)
	running   bool
	stdinLoop bool
}

func NewReaderSource(path string) *ReaderSource {
	return &ReaderSource{path: path}
}

func (s *ReaderSource) Start(ctx context.Context, onDetect func(code string)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyScanning
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if s.path == "-" {
		// Stdin cannot be reopened, so one shared read loop survives
		// across sessions and delivers only while a session is active.
		// A second loop would race the first for lines and lose them.
		if !s.stdinLoop {
			s.stdinLoop = true
			go s.loop(bufio.NewScanner(os.Stdin), nil)
		}
		s.onDetect = onDetect
		s.running = true
		return nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		return err
	}
	s.file = f
	s.onDetect = onDetect
	s.running = true
	go s.loop(bufio.NewScanner(f), f)
	return nil
}

func (s *ReaderSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrNotRunning
	}
	s.running = false
	s.onDetect = nil
	// Closing the device file unblocks that session's read loop.
	s.closeFileLocked()
	return nil
}

// loop delivers decoded lines to the current session's handler. f is
// nil for the shared stdin loop; a file-backed loop additionally checks
// it still owns the device so buffered lines from a closed session
// cannot leak into the next one.
func (s *ReaderSource) loop(sc *bufio.Scanner, f *os.File) {
	for sc.Scan() {
		code := strings.TrimSpace(sc.Text())
		if code == "" {
			continue
		}
		s.mu.Lock()
		cb := s.onDetect
		deliver := s.running && (f == nil || f == s.file)
		s.mu.Unlock()
		if deliver && cb != nil {
			cb(code)
		}
	}
}

func (s *ReaderSource) closeFileLocked() {
	if s.file != nil {
		_ = s.file.Close()
		s.file = nil
	}
}

package activity

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const sinkFilePerm = 0644

// fileSink is an append-only log file. A single long-lived O_APPEND handle
// guarded by a mutex keeps concurrent writers from interleaving lines.
type fileSink struct {
	path string

	mu   sync.Mutex
	file *os.File
}

func newFileSink(path string) *fileSink {
	return &fileSink{path: path}
}

// Append writes one complete line to the sink, opening (and creating) the
// file on first use. The file is reopened if an external rotation renamed
// it away between calls.
func (s *fileSink) Append(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureOpen(); err != nil {
		return err
	}
	if _, err := s.file.Write(line); err != nil {
		return fmt.Errorf("append to %s: %w", s.path, err)
	}
	return nil
}

func (s *fileSink) ensureOpen() error {
	if s.file != nil {
		// Rotation renames the file out from under us; detect that and
		// reopen so the sink path always exists.
		if _, err := os.Stat(s.path); err == nil {
			return nil
		}
		s.file.Close()
		s.file = nil
	}
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, sinkFilePerm)
	if err != nil {
		return fmt.Errorf("open sink %s: %w", s.path, err)
	}
	s.file = f
	return nil
}

// Rotate renames the sink file to the given path and releases the current
// handle so the next append starts a fresh file. Missing sink files are
// not an error; there is simply nothing to rotate.
func (s *fileSink) Rotate(to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		s.file.Close()
		s.file = nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil
	}
	if err := os.Rename(s.path, to); err != nil {
		return fmt.Errorf("rotate %s: %w", s.path, err)
	}
	return nil
}

func (s *fileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// ensureDir creates the logs directory if it does not exist yet.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create logs directory %s: %w", filepath.Clean(dir), err)
	}
	return nil
}

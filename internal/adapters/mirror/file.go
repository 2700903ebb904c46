package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/workdesk/workdesk-go/internal/ports"
)

// File is a MirrorStore whose durable scope is a JSON file on disk, used by
// the CLI so "remember me" and demo continuity survive process restarts.
// The session scope lives in memory only.
type File struct {
	mu      sync.Mutex
	path    string
	session map[string]string
	durable map[string]string
}

// NewFile loads (or initializes) the mirror file at path. A missing file is
// not an error; an unreadable or corrupt file starts the mirror empty, since
// mirrors are advisory.
func NewFile(path string) (*File, error) {
	if path == "" {
		return nil, errors.New("mirror file path is required")
	}
	f := &File{
		path:    path,
		session: make(map[string]string),
		durable: make(map[string]string),
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First run.
	case err != nil:
		// Treat as empty; the next write recreates it.
	default:
		if jsonErr := json.Unmarshal(data, &f.durable); jsonErr != nil {
			f.durable = make(map[string]string)
		}
	}
	return f, nil
}

func (f *File) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.session[key]; ok {
		return v, true
	}
	v, ok := f.durable[key]
	return v, ok
}

func (f *File) GetDurable(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.durable[key]
	return v, ok
}

func (f *File) Set(scope ports.MirrorScope, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if scope == ports.ScopeSession {
		f.session[key] = value
		return nil
	}
	f.durable[key] = value
	return f.flushLocked()
}

func (f *File) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.session, key)
	if _, ok := f.durable[key]; !ok {
		return nil
	}
	delete(f.durable, key)
	return f.flushLocked()
}

// flushLocked writes the durable scope atomically (write-then-rename).
// Must be called with f.mu held.
func (f *File) flushLocked() error {
	data, err := json.MarshalIndent(f.durable, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal mirror: %w", err)
	}
	if dirErr := os.MkdirAll(filepath.Dir(f.path), 0o700); dirErr != nil {
		return fmt.Errorf("create mirror dir: %w", dirErr)
	}
	tmp := f.path + ".tmp"
	if writeErr := os.WriteFile(tmp, data, 0o600); writeErr != nil {
		return fmt.Errorf("write mirror: %w", writeErr)
	}
	if renameErr := os.Rename(tmp, f.path); renameErr != nil {
		return fmt.Errorf("replace mirror: %w", renameErr)
	}
	return nil
}

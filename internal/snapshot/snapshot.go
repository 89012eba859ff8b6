// Package snapshot keeps a local copy of the last known catalog so a restart
// can serve the catalog before the first remote fetch completes.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"celflicks/internal/domain/videos"
)

// Key names the single persisted blob.
const Key = "celflicks-youtube-store"

var (
	ErrNotFound = errors.New("snapshot not found")
	ErrCorrupt  = errors.New("snapshot is corrupt")
)

type Snapshot struct {
	Videos   []videos.Video                     `json:"videos"`
	Featured map[videos.Category][]videos.Video `json:"featuredVideos"`
	Entries  []videos.FeaturedEntry             `json:"featuredEntries,omitempty"` // row ids behind Featured
	SavedAt  time.Time                          `json:"savedAt"`
}

// Persister loads and stores the snapshot blob.
type Persister interface {
	Load() (*Snapshot, error)
	Save(s *Snapshot) error
}

// StorageError wraps a filesystem failure with the operation that hit it.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("snapshot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// FileStore persists the snapshot as <dir>/celflicks-youtube-store.json.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, Key+".json")}
}

func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load() (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "read", Path: f.path, Err: err}
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &StorageError{Op: "decode", Path: f.path, Err: ErrCorrupt}
	}
	fill(&s)
	return &s, nil
}

func (f *FileStore) Save(s *Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	w, err := newAtomicWriter(f.path)
	if err != nil {
		return &StorageError{Op: "write", Path: f.path, Err: err}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		_ = w.abort()
		return &StorageError{Op: "encode", Path: f.path, Err: err}
	}
	if err := w.commit(); err != nil {
		return &StorageError{Op: "write", Path: f.path, Err: err}
	}
	return nil
}

// Memory is an in-process Persister, used when no snapshot directory is set.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

func (m *Memory) Load() (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.data == nil {
		return nil, ErrNotFound
	}
	var s Snapshot
	if err := json.Unmarshal(m.data, &s); err != nil {
		return nil, ErrCorrupt
	}
	fill(&s)
	return &s, nil
}

func (m *Memory) Save(s *Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data = data
	m.mu.Unlock()
	return nil
}

// fill gives every category a non-nil slice so readers never branch on nil.
func fill(s *Snapshot) {
	if s.Videos == nil {
		s.Videos = []videos.Video{}
	}
	if s.Featured == nil {
		s.Featured = make(map[videos.Category][]videos.Video)
	}
	for _, c := range videos.Categories() {
		if s.Featured[c] == nil {
			s.Featured[c] = []videos.Video{}
		}
	}
}

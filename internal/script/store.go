package script

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raysh454/hfdl/internal/logging"
)

// ErrNotFound is returned by Open and Remove for unknown ids.
var ErrNotFound = errors.New("script: not found")

// File is one script written to temporary storage.
type File struct {
	ID        string    `json:"id"`
	Path      string    `json:"-"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Store writes scripts to a temp directory and remembers them so Cleanup can
// delete them on shutdown.
type Store struct {
	dir    string
	logger logging.Logger

	mu    sync.Mutex
	files map[string]File
}

// NewStore creates a store rooted at dir. An empty dir means os.TempDir().
func NewStore(dir string, logger logging.Logger) (*Store, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating temp dir %s: %w", dir, err)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{
		dir:    dir,
		logger: logger.With(logging.Field{Key: "component", Value: "script_store"}),
		files:  make(map[string]File),
	}, nil
}

// Dir is the directory scripts are written to.
func (s *Store) Dir() string { return s.dir }

// Save writes content to a new file and records it.
func (s *Store) Save(content string) (File, error) {
	id := uuid.New().String()
	path := filepath.Join(s.dir, "hfdl-"+id+".sh")

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return File{}, fmt.Errorf("writing script: %w", err)
	}

	f := File{ID: id, Path: path, Size: len(content), CreatedAt: time.Now().UTC()}

	s.mu.Lock()
	s.files[id] = f
	s.mu.Unlock()

	s.logger.Debug("saved script", logging.Field{Key: "id", Value: id}, logging.Field{Key: "path", Value: path})
	return f, nil
}

// Get returns the record for id.
func (s *Store) Get(id string) (File, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	return f, ok
}

// Open opens the script saved under id for reading.
func (s *Store) Open(id string) (*os.File, error) {
	f, ok := s.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	file, err := os.Open(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return file, nil
}

// List returns the recorded scripts, oldest first.
func (s *Store) List() []File {
	s.mu.Lock()
	out := make([]File, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, f)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// Remove deletes one script. A file already gone from disk is not an error.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	f, ok := s.files[id]
	delete(s.files, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return removeFile(f.Path)
}

// Cleanup deletes every recorded script and forgets them. It keeps going past
// failures and returns them joined.
func (s *Store) Cleanup() error {
	s.mu.Lock()
	files := s.files
	s.files = make(map[string]File)
	s.mu.Unlock()

	var errs []error
	for _, f := range files {
		if err := removeFile(f.Path); err != nil {
			s.logger.Warn("removing script", logging.Field{Key: "path", Value: f.Path}, logging.Field{Key: "error", Value: err})
			errs = append(errs, err)
		}
	}
	s.logger.Info("cleaned up scripts", logging.Field{Key: "count", Value: len(files) - len(errs)})
	return errors.Join(errs...)
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

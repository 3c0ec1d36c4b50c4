package personal

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const maxLineSize = 1024 * 1024

// ErrNotLoaded is wrapped by Store.Add when the file could not be read at Open.
// Saving would replace names that were never loaded.
var ErrNotLoaded = errors.New("personal list was not fully loaded, refusing to overwrite it")

// FileAccessError wraps a failure to read or write the personal list file.
type FileAccessError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("personal list %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error {
	return e.Err
}

// List is a set of company names. The zero value is not usable; use NewList.
type List struct {
	mu    sync.RWMutex
	names map[string]struct{}
}

func NewList(names ...string) *List {
	l := &List{names: make(map[string]struct{}, len(names))}
	for _, name := range names {
		l.Add(name)
	}
	return l
}

// Add inserts name and reports whether it was new. Blank names are ignored.
func (l *List) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.names[name]; exists {
		return false
	}
	l.names[name] = struct{}{}
	return true
}

func (l *List) Remove(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.names, name)
}

// Contains is an exact, case-sensitive lookup.
func (l *List) Contains(name string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, exists := l.names[name]
	return exists
}

func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.names)
}

// Names returns a sorted copy of the list.
func (l *List) Names() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	names := make([]string, 0, len(l.names))
	for name := range l.names {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads one name per line. A missing file yields an empty list and no error.
// Any other failure yields the names read so far together with a *FileAccessError.
func Load(path string) (*List, error) {
	l := NewList()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return l, nil
		}
		return l, &FileAccessError{Op: "load", Path: path, Err: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		l.Add(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return l, &FileAccessError{Op: "load", Path: path, Err: err}
	}

	return l, nil
}

// Save replaces the whole file: names go to a temp file that is then renamed over path.
func Save(path string, l *List) error {
	var sb strings.Builder
	for _, name := range l.Names() {
		sb.WriteString(name)
		sb.WriteString("\n")
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, []byte(sb.String()), 0644); err != nil {
		return &FileAccessError{Op: "save", Path: path, Err: err}
	}

	if err := os.Rename(tmpFile, path); err != nil {
		os.Remove(tmpFile)
		return &FileAccessError{Op: "save", Path: path, Err: err}
	}

	return nil
}

// Store binds a List to its backing file and persists every mutation immediately.
type Store struct {
	mu      sync.Mutex
	path    string
	list    *List
	loadErr error
}

// Open loads path into a new Store. The returned Store can always be read; when a
// non-nil error is returned it holds only the names read before the failure and
// refuses to save.
func Open(path string) (*Store, error) {
	list, err := Load(path)
	return &Store{path: filepath.Clean(path), list: list, loadErr: err}, err
}

func NewStore(path string, list *List) *Store {
	if list == nil {
		list = NewList()
	}
	return &Store{path: filepath.Clean(path), list: list}
}

func (s *Store) Path() string {
	return s.path
}

// Writable is false when the file failed to load at Open.
func (s *Store) Writable() bool {
	return s.loadErr == nil
}

func (s *Store) List() *List {
	return s.list
}

func (s *Store) Contains(name string) bool {
	return s.list.Contains(name)
}

// Add inserts name and saves the file. added is false when name was already present,
// in which case nothing is written. When the save fails the insert is rolled back.
// A Store whose file failed to load never writes.
func (s *Store) Add(name string) (added bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loadErr != nil {
		return false, &FileAccessError{Op: "save", Path: s.path, Err: fmt.Errorf("%w: %v", ErrNotLoaded, s.loadErr)}
	}

	if !s.list.Add(name) {
		return false, nil
	}

	if err := Save(s.path, s.list); err != nil {
		s.list.Remove(strings.TrimSpace(name))
		return false, err
	}

	return true, nil
}

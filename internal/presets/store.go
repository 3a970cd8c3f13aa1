package presets

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// MemoryStore keeps user presets in memory. The zero value is ready to use.
type MemoryStore struct {
	mu      sync.RWMutex
	presets []Preset
}

// NewMemoryStore creates an empty in-memory repository.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// List returns the stored presets in insertion order.
func (m *MemoryStore) List() ([]Preset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Preset, len(m.presets))
	copy(out, m.presets)
	return out, nil
}

// Save stores p, replacing a preset of the same name.
func (m *MemoryStore) Save(p Preset) (Preset, error) {
	p, err := checkSave(p)
	if err != nil {
		return Preset{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var stored Preset
	m.presets, stored = upsert(m.presets, p)
	return stored, nil
}

// Delete removes the preset with the given id or name.
func (m *MemoryStore) Delete(idOrName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := remove(m.presets, idOrName)
	if err != nil {
		return err
	}
	m.presets = next
	return nil
}

// FileStore persists user presets as a JSON array in a single file. A
// missing file is an empty store. Writes go through a temporary file and a
// rename.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by path. The file is created on the
// first Save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// List reads the stored presets.
func (f *FileStore) List() ([]Preset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

// Save stores p, replacing a preset of the same name.
func (f *FileStore) Save(p Preset) (Preset, error) {
	p, err := checkSave(p)
	if err != nil {
		return Preset{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.read()
	if err != nil {
		return Preset{}, err
	}
	next, stored := upsert(current, p)
	if err := f.write(next); err != nil {
		return Preset{}, err
	}
	return stored, nil
}

// Delete removes the preset with the given id or name.
func (f *FileStore) Delete(idOrName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.read()
	if err != nil {
		return err
	}
	next, err := remove(current, idOrName)
	if err != nil {
		return err
	}
	return f.write(next)
}

func (f *FileStore) read() ([]Preset, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file %q: %w", f.path, err)
	}
	var out []Preset
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to parse presets file %q: %w", f.path, err)
	}
	return out, nil
}

func (f *FileStore) write(list []Preset) error {
	if list == nil {
		list = []Preset{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal presets: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("unable to create presets folder %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary presets file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("could not write presets: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("could not close presets file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("could not replace presets file %q: %w", f.path, err)
	}
	return nil
}

// upsert replaces the preset named like p (keeping its id) or appends p with
// a fresh id.
func upsert(list []Preset, p Preset) ([]Preset, Preset) {
	_, idx, found := lo.FindIndexOf(list, func(e Preset) bool { return matches(e, p.Name) })
	if found {
		p.ID = list[idx].ID
		out := append([]Preset(nil), list...)
		out[idx] = p
		return out, p
	}
	p.ID = uuid.NewString()
	return append(append([]Preset(nil), list...), p), p
}

func remove(list []Preset, idOrName string) ([]Preset, error) {
	next := lo.Reject(list, func(e Preset, _ int) bool { return matches(e, idOrName) })
	if len(next) == len(list) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, idOrName)
	}
	return next, nil
}

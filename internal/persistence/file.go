package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const appDirName = "tetris-achievements"

// FileStore keeps one JSON document per profile in a directory, by default
// ~/.local/state/tetris-achievements (respecting XDG_STATE_HOME).
type FileStore struct {
	dir string
}

// NewFileStore creates a store over dir. The directory is created on the
// first Save. Pass an empty string to use the default XDG state path.
func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = defaultStateDir()
	}
	return &FileStore{dir: dir}
}

// Dir returns the directory profiles are stored in.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the file a profile is stored in.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load reads a profile. A missing file yields an empty profile.
func (s *FileStore) Load(name string) (*Profile, error) {
	if err := ValidName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return NewProfile(name), nil
		}
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", name, err)
	}
	p.Name = name
	if p.Unlocks == nil {
		p.Unlocks = NewProfile(name).Unlocks
	}
	return &p, nil
}

// Save writes p using an atomic temp-file-then-rename so a crash never
// leaves a truncated profile behind.
func (s *FileStore) Save(p *Profile) error {
	if err := ValidName(p.Name); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating profile dir: %w", err)
	}

	p.Version = profileVersion
	p.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling profile: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, "."+p.Name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path(p.Name)); err != nil {
		return fmt.Errorf("renaming profile file: %w", err)
	}
	committed = true
	return nil
}

// Close is a no-op; FileStore holds no open handles.
func (s *FileStore) Close() error { return nil }

func defaultStateDir() string {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".local", "state", appDirName)
}

package persistence

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/tetris-web/achievements/internal/achievement"
	"github.com/tetris-web/achievements/internal/progress"
)

// profileVersion is bumped when the stored schema changes.
const profileVersion = 1

// Profile is everything that survives a restart: lifetime statistics and
// the unlock record. Per-game counters are never stored.
type Profile struct {
	Version     int                       `json:"version"`
	Name        string                    `json:"name"`
	Lifetime    progress.LifetimeStats    `json:"lifetime"`
	Unlocks     []achievement.UnlockEntry `json:"unlocks"`
	LastUpdated time.Time                 `json:"lastUpdated"`
}

// NewProfile returns an empty profile at the current version.
func NewProfile(name string) *Profile {
	return &Profile{
		Version: profileVersion,
		Name:    name,
		Unlocks: []achievement.UnlockEntry{},
	}
}

// Store loads and saves profiles. Load of an unknown profile returns an
// empty profile, not an error.
type Store interface {
	Load(name string) (*Profile, error)
	Save(p *Profile) error
	Close() error
}

// ErrInvalidName is returned for profile names that are not safe to use as
// file names or keys.
var ErrInvalidName = errors.New("invalid profile name")

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidName checks a profile name.
func ValidName(name string) error {
	if !namePattern.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Open returns the store for driver: "json" keeps files under dir, "sqlite"
// opens the database at path.
func Open(driver, dir, path string) (Store, error) {
	switch driver {
	case "json", "":
		return NewFileStore(dir), nil
	case "sqlite":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

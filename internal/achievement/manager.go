package achievement

import (
	"time"

	"github.com/tetris-web/achievements/internal/progress"
)

// Manager decides which achievements become unlocked as statistics change.
// It is the sole owner of its UnlockRecord. It neither renders nor persists;
// callers learn of unlocks only through the values it returns.
//
// Manager is not safe for concurrent use.
type Manager struct {
	catalog *Catalog
	record  *UnlockRecord
	now     func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the unlock timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager returns a manager over catalog whose record starts with the
// restored entries.
func NewManager(catalog *Catalog, restored []UnlockEntry, opts ...Option) *Manager {
	m := &Manager{
		catalog: catalog,
		record:  NewRecord(restored),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnStatisticsChanged scans every locked achievement in catalog order and
// unlocks those stats satisfies. Winners share a single timestamp and are
// returned together in catalog order; an already unlocked achievement is
// never returned again.
func (m *Manager) OnStatisticsChanged(stats progress.Statistics) []Achievement {
	var (
		unlocked []Achievement
		now      time.Time
	)
	for _, a := range m.catalog.list {
		if m.record.Has(a.ID) {
			continue
		}
		if !Satisfied(a, stats) {
			continue
		}
		if unlocked == nil {
			now = m.now()
		}
		m.record.add(a.ID, now)
		unlocked = append(unlocked, a.clone())
	}
	return unlocked
}

// Catalog returns the catalog the manager evaluates.
func (m *Manager) Catalog() *Catalog { return m.catalog }

// IsUnlocked reports whether id has been unlocked.
func (m *Manager) IsUnlocked(id string) bool { return m.record.Has(id) }

// UnlockedAt returns when id was unlocked.
func (m *Manager) UnlockedAt(id string) (time.Time, bool) { return m.record.UnlockedAt(id) }

// Entries returns a copy of the unlock record in unlock order.
func (m *Manager) Entries() []UnlockEntry { return m.record.Entries() }

// Len reports how many achievements are unlocked.
func (m *Manager) Len() int { return m.record.Len() }

package achievement

import "time"

// UnlockEntry is one persisted unlock.
type UnlockEntry struct {
	ID         string    `json:"id"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

// UnlockRecord is the set of unlocked achievement ids with their unlock
// times. Entries are only ever added. The zero value is not usable; build
// one with NewRecord.
type UnlockRecord struct {
	at    map[string]time.Time
	order []string
}

// NewRecord restores a record from persisted entries. Later duplicates of an
// id are ignored so the earliest stored unlock wins.
func NewRecord(entries []UnlockEntry) *UnlockRecord {
	r := &UnlockRecord{at: make(map[string]time.Time, len(entries))}
	for _, e := range entries {
		r.add(e.ID, e.UnlockedAt)
	}
	return r
}

func (r *UnlockRecord) add(id string, at time.Time) bool {
	if _, ok := r.at[id]; ok {
		return false
	}
	r.at[id] = at
	r.order = append(r.order, id)
	return true
}

// Has reports whether id is unlocked.
func (r *UnlockRecord) Has(id string) bool {
	_, ok := r.at[id]
	return ok
}

// UnlockedAt returns the unlock time of id.
func (r *UnlockRecord) UnlockedAt(id string) (time.Time, bool) {
	t, ok := r.at[id]
	return t, ok
}

// Entries returns the unlocks in the order they happened.
func (r *UnlockRecord) Entries() []UnlockEntry {
	out := make([]UnlockEntry, len(r.order))
	for i, id := range r.order {
		out[i] = UnlockEntry{ID: id, UnlockedAt: r.at[id]}
	}
	return out
}

// Len reports the number of unlocked achievements.
func (r *UnlockRecord) Len() int { return len(r.order) }

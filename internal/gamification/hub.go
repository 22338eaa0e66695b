package gamification

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/tetris-web/achievements/internal/achievement"
	"github.com/tetris-web/achievements/internal/persistence"
	"github.com/tetris-web/achievements/internal/progress"
)

// Hub starts one Coordinator per profile on its first Get or Submit and runs
// it until the hub's context is cancelled. Different profiles progress independently;
// events of one profile stay strictly ordered.
type Hub struct {
	ctx     context.Context
	catalog *achievement.Catalog
	store   persistence.Store
	opts    Options

	onUnlock UnlockCallback
	onStats  StatsCallback

	mu     sync.Mutex
	coords map[string]*Coordinator
	wg     sync.WaitGroup
}

// NewHub returns a hub whose coordinators live until ctx is done.
func NewHub(ctx context.Context, catalog *achievement.Catalog, store persistence.Store, opts Options) *Hub {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Hub{
		ctx:     ctx,
		catalog: catalog,
		store:   store,
		opts:    opts,
		coords:  make(map[string]*Coordinator),
	}
}

// OnUnlock registers the callback every coordinator reports unlocks to.
// Must be called before the first Get.
func (h *Hub) OnUnlock(cb UnlockCallback) { h.onUnlock = cb }

// OnStats registers the callback every coordinator reports statistics to.
// Must be called before the first Get.
func (h *Hub) OnStats(cb StatsCallback) { h.onStats = cb }

// Catalog returns the shared catalog.
func (h *Hub) Catalog() *achievement.Catalog { return h.catalog }

// Get returns the running coordinator for profile, loading and starting it
// if needed.
func (h *Hub) Get(profile string) (*Coordinator, error) {
	if err := persistence.ValidName(profile); err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.coords[profile]; ok {
		return c, nil
	}
	if err := h.ctx.Err(); err != nil {
		return nil, ErrStopped
	}

	c, err := NewCoordinator(profile, h.catalog, h.store, h.opts)
	if err != nil {
		return nil, err
	}
	c.OnUnlock(h.onUnlock)
	c.OnStats(h.onStats)
	h.coords[profile] = c

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		c.Run(h.ctx)
	}()
	h.opts.Logger.Debug("profile loaded", zap.String("profile", profile))
	return c, nil
}

// Submit routes ev to profile's coordinator.
func (h *Hub) Submit(ctx context.Context, profile string, ev progress.Event) (Result, error) {
	c, err := h.Get(profile)
	if err != nil {
		return Result{}, err
	}
	return c.Submit(ctx, ev)
}

// Snapshot returns profile's current snapshot. A running coordinator answers
// directly; otherwise the stored profile is read without starting one, so
// reads never create live state.
func (h *Hub) Snapshot(profile string) (Snapshot, error) {
	if err := persistence.ValidName(profile); err != nil {
		return Snapshot{}, err
	}

	h.mu.Lock()
	c, ok := h.coords[profile]
	h.mu.Unlock()
	if ok {
		return c.Snapshot(), nil
	}

	p, err := h.store.Load(profile)
	if err != nil {
		return Snapshot{}, fmt.Errorf("loading profile %s: %w", profile, err)
	}
	return Snapshot{
		Profile: profile,
		Stats:   progress.Statistics{Lifetime: p.Lifetime},
		Unlocks: achievement.NewRecord(p.Unlocks).Entries(),
	}, nil
}

// Profiles lists the profiles with a running coordinator, in name order.
func (h *Hub) Profiles() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	names := make([]string, 0, len(h.coords))
	for name := range h.coords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Wait blocks until every coordinator has finished its final save. Call it
// after cancelling the hub's context.
func (h *Hub) Wait() {
	h.wg.Wait()
}

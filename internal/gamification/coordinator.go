package gamification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tetris-web/achievements/internal/achievement"
	"github.com/tetris-web/achievements/internal/metrics"
	"github.com/tetris-web/achievements/internal/persistence"
	"github.com/tetris-web/achievements/internal/progress"
)

const defaultSaveInterval = 30 * time.Second

// ErrStopped is returned by Submit once the coordinator's Run loop has exited.
var ErrStopped = errors.New("coordinator stopped")

// Unlock is an achievement together with the moment it was unlocked.
type Unlock struct {
	achievement.Achievement
	UnlockedAt time.Time `json:"unlockedAt"`
}

// Result is the outcome of one event cycle.
type Result struct {
	Stats    progress.Statistics
	Unlocked []Unlock
}

// Snapshot is a consistent read-only view taken between cycles.
type Snapshot struct {
	Profile string                    `json:"profile"`
	Stats   progress.Statistics       `json:"stats"`
	Unlocks []achievement.UnlockEntry `json:"unlocks"`
}

// UnlockedAt returns when id was unlocked in this snapshot.
func (s Snapshot) UnlockedAt(id string) (time.Time, bool) {
	for _, u := range s.Unlocks {
		if u.ID == id {
			return u.UnlockedAt, true
		}
	}
	return time.Time{}, false
}

// UnlockCallback receives every achievement unlocked by one event, in
// catalog order.
type UnlockCallback func(profile string, unlocks []Unlock)

// StatsCallback receives the statistics after every applied event.
type StatsCallback func(profile string, stats progress.Statistics)

// Options tunes a Coordinator. Zero values pick defaults.
type Options struct {
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
	SaveInterval time.Duration
	Clock        func() time.Time
}

type request struct {
	ev    progress.Event
	reply chan response
}

type response struct {
	res Result
	err error
}

// Coordinator owns one profile's tracker and unlock manager. Events are
// applied strictly in arrival order by the Run goroutine: each event is
// folded and the whole catalog scanned before the next one is taken.
// Statistics are persisted on a ticker, right after any unlock, and on
// shutdown.
type Coordinator struct {
	profile      string
	store        persistence.Store
	log          *zap.Logger
	metrics      *metrics.Metrics
	saveInterval time.Duration

	requests chan request
	done     chan struct{}

	mu      sync.Mutex
	tracker *progress.Tracker
	manager *achievement.Manager
	dirty   bool

	onUnlock UnlockCallback
	onStats  StatsCallback
}

// NewCoordinator loads profile from store and restores its lifetime
// statistics and unlock record. The caller must run Run in a goroutine.
func NewCoordinator(profile string, catalog *achievement.Catalog, store persistence.Store, opts Options) (*Coordinator, error) {
	p, err := store.Load(profile)
	if err != nil {
		return nil, fmt.Errorf("loading profile %s: %w", profile, err)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.SaveInterval <= 0 {
		opts.SaveInterval = defaultSaveInterval
	}
	var mopts []achievement.Option
	if opts.Clock != nil {
		mopts = append(mopts, achievement.WithClock(opts.Clock))
	}

	return &Coordinator{
		profile:      profile,
		store:        store,
		log:          opts.Logger.With(zap.String("profile", profile)),
		metrics:      opts.Metrics,
		saveInterval: opts.SaveInterval,
		requests:     make(chan request, 256),
		done:         make(chan struct{}),
		tracker:      progress.NewTracker(progress.Statistics{Lifetime: p.Lifetime}),
		manager:      achievement.NewManager(catalog, p.Unlocks, mopts...),
	}, nil
}

// Profile returns the profile name.
func (c *Coordinator) Profile() string { return c.profile }

// OnUnlock registers the unlock callback. Must be called before Run.
func (c *Coordinator) OnUnlock(cb UnlockCallback) { c.onUnlock = cb }

// OnStats registers the statistics callback. Must be called before Run.
func (c *Coordinator) OnStats(cb StatsCallback) { c.onStats = cb }

// Run processes events and periodically saves dirty state. It blocks until
// ctx is cancelled, then performs a final save.
func (c *Coordinator) Run(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.saveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if c.isDirty() {
				c.save()
			}
			return
		case req := <-c.requests:
			res, err := c.process(req.ev)
			req.reply <- response{res: res, err: err}
		case <-ticker.C:
			if c.isDirty() {
				c.save()
			}
		}
	}
}

// Submit queues ev and waits until it has been applied and evaluated.
// Invalid events return an error wrapping progress.ErrInvalidEvent and leave
// the statistics untouched.
func (c *Coordinator) Submit(ctx context.Context, ev progress.Event) (Result, error) {
	req := request{ev: ev, reply: make(chan response, 1)}
	select {
	case c.requests <- req:
	case <-c.done:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	select {
	case resp := <-req.reply:
		return resp.res, resp.err
	case <-c.done:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Snapshot returns a deep copy of the state as of the last completed cycle.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Profile: c.profile,
		Stats:   c.tracker.Statistics(),
		Unlocks: c.manager.Entries(),
	}
}

// Catalog returns the catalog this coordinator evaluates.
func (c *Coordinator) Catalog() *achievement.Catalog { return c.manager.Catalog() }

func (c *Coordinator) process(ev progress.Event) (Result, error) {
	start := time.Now()

	c.mu.Lock()
	stats, err := c.tracker.ApplyDelta(ev)
	if err != nil {
		c.mu.Unlock()
		c.metrics.Event(string(ev.Kind), "invalid")
		c.log.Warn("rejected game event", zap.String("event", string(ev.Kind)), zap.Error(err))
		return Result{Stats: stats}, err
	}
	won := c.manager.OnStatisticsChanged(stats)
	unlocks := make([]Unlock, len(won))
	for i, a := range won {
		at, _ := c.manager.UnlockedAt(a.ID)
		unlocks[i] = Unlock{Achievement: a, UnlockedAt: at}
	}
	c.dirty = true
	c.mu.Unlock()

	c.metrics.Event(string(ev.Kind), "ok")
	c.metrics.ObserveEvaluation(time.Since(start))
	for _, u := range unlocks {
		c.metrics.Unlock(string(u.Rarity))
		c.log.Info("achievement unlocked",
			zap.String("achievement", u.ID),
			zap.String("rarity", string(u.Rarity)))
	}
	if len(unlocks) > 0 {
		c.save()
	}

	// Callbacks run outside the lock so a slow listener cannot stall readers.
	if c.onStats != nil {
		c.onStats(c.profile, stats)
	}
	if c.onUnlock != nil && len(unlocks) > 0 {
		c.onUnlock(c.profile, unlocks)
	}
	return Result{Stats: stats, Unlocked: unlocks}, nil
}

func (c *Coordinator) isDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

func (c *Coordinator) save() {
	c.mu.Lock()
	p := persistence.NewProfile(c.profile)
	p.Lifetime = c.tracker.Statistics().Lifetime
	p.Unlocks = c.manager.Entries()
	c.dirty = false
	c.mu.Unlock()

	err := c.store.Save(p)
	c.metrics.Save(err)
	if err != nil {
		c.log.Error("failed to save profile", zap.Error(err))
		c.mu.Lock()
		c.dirty = true
		c.mu.Unlock()
	}
}

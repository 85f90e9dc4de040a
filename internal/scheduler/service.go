package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"gamedaybot/pkg/logx"
)

// Action is the work a trigger performs when it fires.
type Action func(ctx context.Context) error

// Key identifies one per-game trigger.
type Key struct {
	Sport  string
	GameID string
}

func (k Key) String() string { return k.Sport + "_" + k.GameID }

// Trigger describes a desired per-game registration.
type Trigger struct {
	FireAt time.Time
	Action Action
}

type entry struct {
	key    Key
	fireAt time.Time
	action Action
	cronID cron.EntryID
}

// Service owns the cron runtime and the trigger registry. All registry
// mutations happen under one mutex so a concurrently-firing trigger never
// observes a partial update.
type Service struct {
	log logx.Logger
	loc *time.Location

	mu       sync.Mutex
	c        *cron.Cron
	entries  map[Key]*entry
	weeklyID cron.EntryID

	runCtx    context.Context
	runCancel context.CancelFunc
}

func New(loc *time.Location, log logx.Logger) *Service {
	return &Service{
		log:     log,
		loc:     loc,
		entries: make(map[Key]*entry),
	}
}

// Start brings up the cron runtime. Triggers registered before Start are
// honored once it runs.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}
	s.runCtx, s.runCancel = context.WithCancel(ctx)
	s.c = cron.New(cron.WithLocation(s.loc))

	// re-register anything added before Start
	for _, e := range s.entries {
		s.addCronLocked(e)
	}

	s.c.Start()
	s.log.Info("scheduler started", logx.String("tz", s.loc.String()), logx.Int("triggers", len(s.entries)))
}

// Stop cancels every trigger, clears the registry, and shuts the cron
// runtime down. An already-firing trigger runs to completion; Stop waits
// for it up to ctx's deadline.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	c := s.c
	s.c = nil
	cancel := s.runCancel
	s.runCancel = nil
	s.entries = make(map[Key]*entry)
	s.weeklyID = 0
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c == nil {
		return
	}
	done := c.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
	}
	s.log.Info("scheduler stopped")
}

// RegisterWeekly registers the recurring refresh action. Re-registering
// while one is active is a no-op; overlapping startup paths must not stack
// duplicate weekly jobs.
func (s *Service) RegisterWeekly(spec string, action Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return fmt.Errorf("scheduler not started")
	}
	if s.weeklyID != 0 {
		s.log.Warn("weekly job already registered; ignoring")
		return nil
	}
	id, err := s.c.AddFunc(spec, func() { s.run("weekly-refresh", action) })
	if err != nil {
		return fmt.Errorf("register weekly %q: %w", spec, err)
	}
	s.weeklyID = id
	s.log.Info("weekly job registered", logx.String("spec", spec))
	return nil
}

// Reconcile synchronizes the per-game registry with desired: keys missing
// from the registry are added, registered keys absent from desired are
// cancelled and removed. Triggers present in both are left untouched so
// in-flight timers for unchanged games keep running.
func (s *Service) Reconcile(desired map[Key]Trigger) (added, removed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, trig := range desired {
		if _, ok := s.entries[key]; ok {
			continue
		}
		if s.addLocked(key, trig.FireAt, trig.Action) {
			added++
		}
	}

	for key, e := range s.entries {
		if _, ok := desired[key]; ok {
			continue
		}
		s.removeLocked(e)
		removed++
	}

	if added > 0 || removed > 0 {
		s.log.Info("triggers reconciled",
			logx.Int("added", added),
			logx.Int("removed", removed),
			logx.Int("registered", len(s.entries)))
	}
	return added, removed
}

// HasTask reports whether a per-game trigger is registered for key.
func (s *Service) HasTask(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok
}

// AddTask registers a single per-game trigger outside a full reconciliation
// (e.g. the manual check-today backfill). Returns false if key is already
// registered.
func (s *Service) AddTask(key Key, fireAt time.Time, action Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return false
	}
	return s.addLocked(key, fireAt, action)
}

// Keys returns the registered per-game keys.
func (s *Service) Keys() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Key, 0, len(s.entries))
	for k := range s.entries {
		out = append(out, k)
	}
	return out
}

func (s *Service) addLocked(key Key, fireAt time.Time, action Action) bool {
	e := &entry{key: key, fireAt: fireAt, action: action}
	s.entries[key] = e
	if s.c != nil {
		if !s.addCronLocked(e) {
			delete(s.entries, key)
			return false
		}
	}
	s.log.Info("game day trigger scheduled",
		logx.String("key", key.String()),
		logx.Time("fire_at", e.fireAt))
	return true
}

func (s *Service) addCronLocked(e *entry) bool {
	key := e.key
	action := e.action
	id, err := s.c.AddFunc(GameDaySpec(e.fireAt.In(s.loc)), func() {
		s.run(key.String(), action)
	})
	if err != nil {
		s.log.Error("failed to schedule trigger", logx.String("key", key.String()), logx.Err(err))
		return false
	}
	e.cronID = id
	return true
}

func (s *Service) removeLocked(e *entry) {
	if s.c != nil && e.cronID != 0 {
		s.c.Remove(e.cronID)
	}
	delete(s.entries, e.key)
	s.log.Info("game day trigger removed", logx.String("key", e.key.String()))
}

// run executes a trigger action with panic recovery. No timeout is applied
// here; the only bounds are the ones the underlying transports impose.
func (s *Service) run(name string, action Action) {
	s.mu.Lock()
	ctx := s.runCtx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic in trigger",
				logx.String("trigger", name),
				logx.Any("panic", r),
				logx.String("stack", string(debug.Stack())))
		}
	}()

	start := time.Now()
	s.log.Info("trigger firing", logx.String("trigger", name))
	if err := action(ctx); err != nil {
		s.log.Warn("trigger failed", logx.String("trigger", name), logx.Err(err))
		return
	}
	s.log.Info("trigger done", logx.String("trigger", name), logx.Duration("took", time.Since(start)))
}

// GameDaySpec builds the cron expression for a game-day trigger: the
// trigger's wall-clock minute and hour, pinned to the fire time's month and
// day. The expression technically recurs yearly; reconciliation removes it
// long before that.
func GameDaySpec(fireAt time.Time) string {
	return fmt.Sprintf("%d %d %d %d *", fireAt.Minute(), fireAt.Hour(), fireAt.Day(), int(fireAt.Month()))
}

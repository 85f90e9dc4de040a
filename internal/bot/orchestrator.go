package bot

import (
	"context"
	"time"

	"gamedaybot/internal/schedule"
	"gamedaybot/internal/scheduler"
	"gamedaybot/internal/threads"
	"gamedaybot/pkg/logx"
)

// Orchestrator ties schedule ingestion, trigger reconciliation, and the
// manual command surface together. One instance per process.
type Orchestrator struct {
	store *schedule.Store
	sched *scheduler.Service
	disp  *threads.Dispatcher
	log   logx.Logger

	weeklySpec  string
	gameDayHour int
	gameDayMin  int

	now func() time.Time
}

func NewOrchestrator(store *schedule.Store, sched *scheduler.Service, disp *threads.Dispatcher, weeklySpec string, gameDayHour, gameDayMin int, log logx.Logger) *Orchestrator {
	return &Orchestrator{
		store:       store,
		sched:       sched,
		disp:        disp,
		log:         log,
		weeklySpec:  weeklySpec,
		gameDayHour: gameDayHour,
		gameDayMin:  gameDayMin,
		now:         time.Now,
	}
}

// RefreshAllSchedules re-ingests every sport's schedule and reconciles the
// per-game trigger registry against the refreshed data. Per-sport failures
// are absorbed by the store; the loop always visits every sport.
func (o *Orchestrator) RefreshAllSchedules(ctx context.Context) {
	for _, sport := range o.store.Sports() {
		o.store.Refresh(ctx, sport)
	}
	added, removed := o.sched.Reconcile(o.desiredTriggers())
	o.log.Info("schedules refreshed",
		logx.Int("triggers_added", added),
		logx.Int("triggers_removed", removed))
}

// desiredTriggers computes the full per-game trigger set from the cached
// schedules: one trigger per today-or-future game, firing at the configured
// wall-clock time on the game's date.
func (o *Orchestrator) desiredTriggers() map[scheduler.Key]scheduler.Trigger {
	desired := make(map[scheduler.Key]scheduler.Trigger)
	for _, sport := range o.store.Sports() {
		for _, g := range o.store.UpcomingGames(sport) {
			key := scheduler.Key{Sport: sport.Key, GameID: g.ID}
			desired[key] = scheduler.Trigger{
				FireAt: o.fireTimeFor(g),
				Action: o.checkTodayAction(),
			}
		}
	}
	return desired
}

// fireTimeFor places the trigger at the configured HH:MM (store timezone) on
// the game's calendar date, independent of kickoff time.
func (o *Orchestrator) fireTimeFor(g schedule.Game) time.Time {
	loc := o.store.Location()
	y, m, d := g.Date.In(loc).Date()
	return time.Date(y, m, d, o.gameDayHour, o.gameDayMin, 0, 0, loc)
}

// checkTodayAction is what every game-day trigger runs: a full "today"
// sweep. The dispatcher's existence check makes repeat firings harmless.
func (o *Orchestrator) checkTodayAction() scheduler.Action {
	return func(ctx context.Context) error {
		o.disp.CheckAndCreateTodayThreads(ctx)
		return nil
	}
}

// StartScheduledJobs registers the weekly refresh. Idempotent: a second call
// is a logged no-op inside the scheduler.
func (o *Orchestrator) StartScheduledJobs(ctx context.Context) error {
	return o.sched.RegisterWeekly(o.weeklySpec, func(c context.Context) error {
		o.RefreshAllSchedules(c)
		return nil
	})
}

// StopScheduledJobs cancels the weekly job and all per-game triggers.
func (o *Orchestrator) StopScheduledJobs(ctx context.Context) {
	o.sched.Stop(ctx)
}

// CheckToday backfills missing triggers for today's games, then runs the
// thread check. Returns threads created and triggers backfilled.
func (o *Orchestrator) CheckToday(ctx context.Context) (created, backfilled int) {
	for _, sg := range o.store.TodaysGames() {
		key := scheduler.Key{Sport: sg.Sport.Key, GameID: sg.Game.ID}
		if o.sched.HasTask(key) {
			continue
		}
		if o.sched.AddTask(key, o.fireTimeFor(sg.Game), o.checkTodayAction()) {
			backfilled++
		}
	}
	created = o.disp.CheckAndCreateTodayThreads(ctx)
	return created, backfilled
}

func (o *Orchestrator) TodaysGames() []schedule.SportGame { return o.store.TodaysGames() }

func (o *Orchestrator) GameCounter(sport schedule.Sport) int { return o.store.GameCounter(sport) }

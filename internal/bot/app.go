package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"gamedaybot/internal/config"
	"gamedaybot/internal/discord"
	"gamedaybot/internal/espn"
	"gamedaybot/internal/ops"
	"gamedaybot/internal/runtime/supervisor"
	"gamedaybot/internal/schedule"
	"gamedaybot/internal/scheduler"
	"gamedaybot/internal/threads"
	"gamedaybot/pkg/logx"
)

// App wires every component together and owns the start/stop order.
type App struct {
	log    logx.Logger
	logSvc *logx.Service

	cfgMgr *config.Manager
	env    config.Env

	adapter *discord.Adapter
	client  *espn.Client
	store   *schedule.Store
	sched   *scheduler.Service
	disp    *threads.Dispatcher
	orch    *Orchestrator
	opsSrv  *ops.Server
}

// deferredSender lets the logging service exist before the Discord session
// does. Until the adapter is attached, chat log lines are dropped.
type deferredSender struct {
	v atomic.Value // logx.ChannelSender
}

func (d *deferredSender) set(s logx.ChannelSender) { d.v.Store(s) }

func (d *deferredSender) SendMessage(ctx context.Context, channelID, content string) error {
	s, ok := d.v.Load().(logx.ChannelSender)
	if !ok {
		return errors.New("chat sender not connected yet")
	}
	return s.SendMessage(ctx, channelID, content)
}

// NewApp loads environment and file configuration, validates both, and
// constructs every component. Nothing talks to the network yet; that happens
// in Run.
func NewApp(configPath string) (*App, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, err
	}

	mgr := config.NewManager(configPath)
	mgr.SetValidator(validateConfig)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	sender := &deferredSender{}
	logSvc, log := logx.New(logConfigFrom(cfg, env.GeneralChannelID), sender)
	mgr.SetLogger(log.With(logx.String("comp", "config")))

	loc, err := time.LoadLocation(env.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", env.Timezone, err)
	}

	teamID := cfg.Team.ID
	if env.TeamID != "" {
		teamID = env.TeamID
	}

	adapter, err := discord.New(discord.Config{
		Token:           env.Token,
		GuildID:         env.GuildID,
		ModeratorRoleID: env.ModeratorRoleID,
	}, log.With(logx.String("comp", "discord")))
	if err != nil {
		return nil, err
	}
	sender.set(adapter)

	timeout, err := time.ParseDuration(cfg.ESPN.Timeout)
	if err != nil {
		return nil, fmt.Errorf("espn.timeout: %w", err)
	}
	client := espn.NewClient(espn.Config{
		BaseURL: cfg.ESPN.BaseURL,
		TeamID:  teamID,
		Timeout: timeout,
	}, log.With(logx.String("comp", "espn")))

	store := schedule.NewStore(client, sportsFrom(cfg.Sports), schedule.TeamIdentity{
		Name:         cfg.Team.Name,
		Abbreviation: cfg.Team.Abbreviation,
	}, loc, log.With(logx.String("comp", "schedule")))

	sched := scheduler.New(loc, log.With(logx.String("comp", "scheduler")))

	disp := threads.NewDispatcher(adapter, store, threads.Config{
		GameThreadsChannelID: env.GameThreadsChannelID,
		GeneralChannelID:     env.GeneralChannelID,
	}, log.With(logx.String("comp", "threads")))

	hour, minute, err := parseGameDayTime(cfg.Threads.GameDayTime)
	if err != nil {
		return nil, fmt.Errorf("threads.game_day_time: %w", err)
	}

	orch := NewOrchestrator(store, sched, disp, env.WeeklyRefreshCron, hour, minute,
		log.With(logx.String("comp", "bot")))

	a := &App{
		log:     log,
		logSvc:  logSvc,
		cfgMgr:  mgr,
		env:     env,
		adapter: adapter,
		client:  client,
		store:   store,
		sched:   sched,
		disp:    disp,
		orch:    orch,
	}
	if cfg.Ops.Enabled {
		a.opsSrv = ops.New(cfg.Ops.Addr, func() any { return orch.StatusReport() },
			log.With(logx.String("comp", "ops")))
	}
	return a, nil
}

// Run starts the bot and blocks until ctx is cancelled or a supervised
// goroutine fails, then shuts down in reverse order.
func (a *App) Run(ctx context.Context) error {
	sup := supervisor.New(ctx, a.log)

	a.sched.Start(sup.Context())

	if err := a.adapter.Start(sup.Context()); err != nil {
		a.sched.Stop(context.Background())
		return err
	}

	if !a.client.TestConnection(sup.Context()) {
		a.log.Warn("schedule source unreachable at startup, continuing")
	}

	if err := a.adapter.RegisterCommands(sup.Context(), a.orch.Commands()); err != nil {
		a.log.Error("slash command registration failed", logx.Err(err))
	}

	a.orch.RefreshAllSchedules(sup.Context())
	if err := a.orch.StartScheduledJobs(sup.Context()); err != nil {
		a.log.Error("weekly refresh registration failed", logx.Err(err))
	}

	sup.Go("config-watch", a.cfgMgr.Watch)
	sup.Go("config-apply", a.applyConfigUpdates)
	if a.opsSrv != nil {
		sup.Go("ops-server", a.opsSrv.Run)
	}

	a.log.Info("bot running",
		logx.String("guild", a.env.GuildID),
		logx.Int("sports", len(a.store.Sports())))

	<-sup.Context().Done()

	a.shutdown()

	waitCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := sup.Wait(waitCtx); err != nil {
		a.log.Warn("supervised goroutines did not drain cleanly", logx.Err(err))
	}

	if err := sup.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// applyConfigUpdates reacts to hot reloads. Only the logging section takes
// effect live; the rest of the config requires a restart and is logged as
// such.
func (a *App) applyConfigUpdates(ctx context.Context) error {
	ch := a.cfgMgr.Subscribe(4)
	defer a.cfgMgr.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return nil
		case cfg, ok := <-ch:
			if !ok {
				return nil
			}
			a.logSvc.Apply(logConfigFrom(cfg, a.env.GeneralChannelID))
			a.log.Info("logging configuration applied")
			a.log.Info("non-logging config changes take effect on restart")
		}
	}
}

// shutdown runs the stop sequence with a per-step timeout so one stuck
// component cannot hang the exit.
func (a *App) shutdown() {
	steps := []struct {
		name    string
		timeout time.Duration
		fn      func(ctx context.Context) error
	}{
		{"scheduler", 5 * time.Second, func(ctx context.Context) error {
			a.orch.StopScheduledJobs(ctx)
			return nil
		}},
		{"discord", 5 * time.Second, a.adapter.Stop},
		{"logging", 3 * time.Second, func(context.Context) error { return a.logSvc.Close() }},
	}

	for _, st := range steps {
		ctx, cancel := context.WithTimeout(context.Background(), st.timeout)
		if err := st.fn(ctx); err != nil {
			a.log.Warn("shutdown step failed", logx.String("step", st.name), logx.Err(err))
		}
		cancel()
	}
}

func logConfigFrom(cfg *config.Config, generalChannelID string) logx.Config {
	lc := logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
		Discord: logx.DiscordConfig{
			Enabled:    cfg.Logging.Discord.Enabled,
			ChannelID:  cfg.Logging.Discord.ChannelID,
			MinLevel:   cfg.Logging.Discord.MinLevel,
			RatePerSec: cfg.Logging.Discord.RatePerSec,
		},
	}
	if lc.Discord.ChannelID == "" {
		lc.Discord.ChannelID = generalChannelID
	}
	return lc
}

func sportsFrom(cfgs []config.SportConfig) []schedule.Sport {
	out := make([]schedule.Sport, 0, len(cfgs))
	for _, sc := range cfgs {
		out = append(out, schedule.Sport{
			Key:            sc.Key,
			DisplayName:    sc.DisplayName,
			Emoji:          sc.Emoji,
			Path:           sc.Path,
			SeasonRollover: sc.SeasonRollover,
		})
	}
	return out
}

func parseGameDayTime(s string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("bad hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("bad minute in %q", s)
	}
	return hour, minute, nil
}

func validateConfig(_ context.Context, cfg *config.Config) error {
	if strings.TrimSpace(cfg.ESPN.BaseURL) == "" {
		return errors.New("espn.base_url is required")
	}
	if _, err := time.ParseDuration(cfg.ESPN.Timeout); err != nil {
		return fmt.Errorf("espn.timeout: %w", err)
	}
	if _, _, err := parseGameDayTime(cfg.Threads.GameDayTime); err != nil {
		return fmt.Errorf("threads.game_day_time: %w", err)
	}
	if len(cfg.Sports) == 0 {
		return errors.New("at least one sport is required")
	}
	seen := make(map[string]bool, len(cfg.Sports))
	for i, sc := range cfg.Sports {
		if strings.TrimSpace(sc.Key) == "" || strings.TrimSpace(sc.Path) == "" {
			return fmt.Errorf("sports[%d]: key and path are required", i)
		}
		if seen[sc.Key] {
			return fmt.Errorf("sports[%d]: duplicate key %q", i, sc.Key)
		}
		seen[sc.Key] = true
		switch sc.SeasonRollover {
		case "", "august", "calendar":
		default:
			return fmt.Errorf("sports[%d]: season_rollover must be \"august\" or \"calendar\"", i)
		}
	}
	return nil
}

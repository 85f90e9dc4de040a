package threads

import (
	"context"
	"fmt"
	"sync"

	"gamedaybot/internal/schedule"
	"gamedaybot/pkg/logx"
)

// ThreadRef identifies a created thread.
type ThreadRef struct {
	ID   string
	Name string
}

// ChatClient is the chat-platform surface the dispatcher needs. Implemented
// by the Discord adapter.
type ChatClient interface {
	// HasChannel reports whether the channel is known and accessible.
	HasChannel(ctx context.Context, channelID string) bool
	// ListThreadNames returns the names of both active and archived threads
	// in the channel.
	ListThreadNames(ctx context.Context, channelID string) ([]string, error)
	// CreateThread creates a public thread in the channel.
	CreateThread(ctx context.Context, channelID, name string) (ThreadRef, error)
	// SendMessage posts plain text into a channel or thread.
	SendMessage(ctx context.Context, channelID, content string) error
}

type Config struct {
	GameThreadsChannelID string
	GeneralChannelID     string
}

// Dispatcher decides whether a thread should exist for each of today's games
// and performs at-most-once creation. The pre-create existence check against
// the channel's thread names is the duplicate guard across restarts; the
// in-memory claim set additionally serializes concurrent attempts for the
// same game inside one process.
type Dispatcher struct {
	chat  ChatClient
	store *schedule.Store
	cfg   Config
	log   logx.Logger

	mu       sync.Mutex
	creating map[string]struct{}
}

func NewDispatcher(chat ChatClient, store *schedule.Store, cfg Config, log logx.Logger) *Dispatcher {
	return &Dispatcher{
		chat:     chat,
		store:    store,
		cfg:      cfg,
		log:      log,
		creating: make(map[string]struct{}),
	}
}

// CheckAndCreateTodayThreads attempts thread creation for every game dated
// today and returns the number of threads actually created. Failures are
// isolated per game; one bad game never aborts the rest.
func (d *Dispatcher) CheckAndCreateTodayThreads(ctx context.Context) int {
	todays := d.store.TodaysGames()
	created := 0

	for _, sg := range todays {
		if d.CreateGameThread(ctx, sg.Game, sg.Sport) {
			created++
		}
	}

	d.log.Info("today's thread check complete",
		logx.Int("games", len(todays)),
		logx.Int("created", created))
	return created
}

// CreateGameThread creates the discussion thread for game, posts the game
// details into it, and announces it in the general channel. Returns false
// without side effects when a precondition fails or the thread already
// exists. Post failures after the thread exists are logged only.
func (d *Dispatcher) CreateGameThread(ctx context.Context, game schedule.Game, sport schedule.Sport) bool {
	if !d.chat.HasChannel(ctx, d.cfg.GameThreadsChannelID) || !d.chat.HasChannel(ctx, d.cfg.GeneralChannelID) {
		d.log.Error("required channels unavailable",
			logx.String("threads_channel", d.cfg.GameThreadsChannelID),
			logx.String("general_channel", d.cfg.GeneralChannelID))
		return false
	}

	opponent, ok := schedule.Opponent(game, d.store.Team())
	if !ok {
		d.log.Error("could not resolve opponent",
			logx.String("sport", sport.Key),
			logx.String("game", game.ID),
			logx.String("name", game.Name))
		return false
	}

	claim := sport.Key + "_" + game.ID
	if !d.tryClaim(claim) {
		d.log.Debug("creation already in progress", logx.String("key", claim))
		return false
	}
	defer d.release(claim)

	// The counter commits only after the thread actually exists; an
	// already-created title or a failed create must not advance numbering,
	// or a later check would derive a different title and duplicate the
	// thread.
	number := d.store.GameCounter(sport) + 1
	title := ThreadTitle(sport, number, opponent.DisplayName)

	if d.threadExists(ctx, title) {
		d.log.Info("thread already exists", logx.String("title", title))
		return false
	}

	ref, err := d.chat.CreateThread(ctx, d.cfg.GameThreadsChannelID, title)
	if err != nil {
		d.log.Error("thread creation failed", logx.String("title", title), logx.Err(err))
		return false
	}
	d.store.IncrementGameCounter(sport)

	// The thread now exists; everything below is best-effort.
	if err := d.chat.SendMessage(ctx, ref.ID, d.detailsMessage(game, sport, opponent)); err != nil {
		d.log.Warn("failed to post game details", logx.String("thread", ref.ID), logx.Err(err))
	}
	if err := d.chat.SendMessage(ctx, d.cfg.GeneralChannelID, d.notificationMessage(sport, title, ref)); err != nil {
		d.log.Warn("failed to post notification", logx.String("channel", d.cfg.GeneralChannelID), logx.Err(err))
	}

	d.log.Info("thread created", logx.String("title", title), logx.String("thread", ref.ID))
	return true
}

// threadExists checks active and archived threads for an exact title match.
// A listing failure is treated as "not found": creating a rare duplicate
// beats never creating the thread when history can't be read.
func (d *Dispatcher) threadExists(ctx context.Context, title string) bool {
	names, err := d.chat.ListThreadNames(ctx, d.cfg.GameThreadsChannelID)
	if err != nil {
		d.log.Warn("thread listing failed; assuming no duplicate", logx.Err(err))
		return false
	}
	for _, n := range names {
		if n == title {
			return true
		}
	}
	return false
}

func (d *Dispatcher) tryClaim(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.creating[key]; busy {
		return false
	}
	d.creating[key] = struct{}{}
	return true
}

func (d *Dispatcher) release(key string) {
	d.mu.Lock()
	delete(d.creating, key)
	d.mu.Unlock()
}

// ThreadTitle is the canonical thread name; the exact-match dedup check
// depends on it being deterministic.
func ThreadTitle(sport schedule.Sport, number int, opponent string) string {
	return fmt.Sprintf("%s Game %d: %s", sport.DisplayName, number, opponent)
}

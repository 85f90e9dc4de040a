package schedule

import (
	"context"
	"sync"
	"time"

	"gamedaybot/pkg/logx"
)

// Source returns the current schedule for a sport. May fail; the Store
// recovers fetch failures locally so one sport's outage never blocks others.
type Source interface {
	FetchSchedule(ctx context.Context, sport Sport) ([]Game, error)
}

// Store owns the per-sport cached schedules and game counters. State is
// replaced wholesale on each refresh; "today" views are derived fresh from
// the cache on every call.
type Store struct {
	source Source
	sports []Sport
	team   TeamIdentity
	loc    *time.Location
	log    logx.Logger

	mu        sync.RWMutex
	schedules map[string][]Game
	counters  map[string]int

	now func() time.Time
}

func NewStore(source Source, sports []Sport, team TeamIdentity, loc *time.Location, log logx.Logger) *Store {
	return &Store{
		source:    source,
		sports:    append([]Sport(nil), sports...),
		team:      team,
		loc:       loc,
		log:       log,
		schedules: make(map[string][]Game),
		counters:  make(map[string]int),
		now:       time.Now,
	}
}

func (s *Store) Sports() []Sport { return append([]Sport(nil), s.sports...) }

func (s *Store) Team() TeamIdentity { return s.team }

func (s *Store) Location() *time.Location { return s.loc }

// Refresh replaces the cached schedule for sport and recomputes its game
// counter as the count of games dated on or before now. A source failure is
// logged and leaves an empty schedule; it is not surfaced to the caller.
func (s *Store) Refresh(ctx context.Context, sport Sport) {
	games, err := s.source.FetchSchedule(ctx, sport)
	if err != nil {
		s.log.Warn("schedule fetch failed; falling back to empty schedule",
			logx.String("sport", sport.Key), logx.Err(err))
		games = nil
	}

	now := s.now()
	count := 0
	for _, g := range games {
		if !g.Date.After(now) {
			count++
		}
	}

	s.mu.Lock()
	s.schedules[sport.Key] = games
	s.counters[sport.Key] = count
	s.mu.Unlock()

	s.log.Info("schedule refreshed",
		logx.String("sport", sport.Key),
		logx.Int("games", len(games)),
		logx.Int("played", count))
}

// Schedule returns the cached schedule for sport; empty when never refreshed
// or when the last refresh failed.
func (s *Store) Schedule(sport Sport) []Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Game(nil), s.schedules[sport.Key]...)
}

// TodaysGames returns every cached game across all sports whose date falls
// on today's calendar day in the configured timezone. Derived fresh per call:
// "today" moves with real time even without a refresh.
func (s *Store) TodaysGames() []SportGame {
	now := s.now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []SportGame
	for _, sport := range s.sports {
		for _, g := range s.schedules[sport.Key] {
			if SameDay(g.Date, now, s.loc) {
				out = append(out, SportGame{Sport: sport, Game: g})
			}
		}
	}
	return out
}

// UpcomingGames returns cached games for sport dated today or later, in
// schedule order.
func (s *Store) UpcomingGames(sport Sport) []Game {
	now := s.now()
	today := startOfDay(now, s.loc)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Game
	for _, g := range s.schedules[sport.Key] {
		if !startOfDay(g.Date, s.loc).Before(today) {
			out = append(out, g)
		}
	}
	return out
}

func (s *Store) GameCounter(sport Sport) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.counters[sport.Key]
}

// IncrementGameCounter bumps the counter for sport and returns the new value.
// Called once per thread actually created, so numbering follows created
// threads rather than the refresh-derived count.
func (s *Store) IncrementGameCounter(sport Sport) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[sport.Key]++
	return s.counters[sport.Key]
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

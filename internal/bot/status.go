package bot

import (
	"time"

	"gamedaybot/internal/schedule"
	"gamedaybot/internal/scheduler"
)

// SportStatus summarizes one sport for the status surfaces.
type SportStatus struct {
	Key         string    `json:"key"`
	DisplayName string    `json:"display_name"`
	GameCounter int       `json:"game_counter"`
	Upcoming    int       `json:"upcoming"`
	NextGame    time.Time `json:"next_game,omitzero"`
	NextGameVs  string    `json:"next_game_vs,omitempty"`
}

type TodayStatus struct {
	Sport    string    `json:"sport"`
	Opponent string    `json:"opponent"`
	Kickoff  time.Time `json:"kickoff"`
}

type Report struct {
	Sports     []SportStatus `json:"sports"`
	Today      []TodayStatus `json:"today"`
	NextWeekly time.Time     `json:"next_weekly,omitzero"`
	Triggers   int           `json:"registered_triggers"`
}

// StatusReport assembles the live view used by /bot-status and the ops
// endpoint: counters, today's games, upcoming games per sport, and the next
// weekly-refresh time.
func (o *Orchestrator) StatusReport() Report {
	snap := o.sched.Snapshot()
	rep := Report{
		NextWeekly: snap.NextWeekly,
		Triggers:   len(snap.Triggers),
	}

	for _, sport := range o.store.Sports() {
		upcoming := o.store.UpcomingGames(sport)
		ss := SportStatus{
			Key:         sport.Key,
			DisplayName: sport.DisplayName,
			GameCounter: o.store.GameCounter(sport),
			Upcoming:    len(upcoming),
		}
		if len(upcoming) > 0 {
			ss.NextGame = upcoming[0].Date
			if opp, ok := schedule.Opponent(upcoming[0], o.store.Team()); ok {
				ss.NextGameVs = opp.DisplayName
			}
		}
		rep.Sports = append(rep.Sports, ss)
	}

	for _, sg := range o.store.TodaysGames() {
		ts := TodayStatus{Sport: sg.Sport.Key, Kickoff: sg.Game.Date}
		if opp, ok := schedule.Opponent(sg.Game, o.store.Team()); ok {
			ts.Opponent = opp.DisplayName
		} else {
			ts.Opponent = "Unknown"
		}
		rep.Today = append(rep.Today, ts)
	}

	return rep
}

// RegisteredKeys exposes the trigger registry for the ops endpoint.
func (o *Orchestrator) RegisteredKeys() []scheduler.Key { return o.sched.Keys() }

package schedule

import (
	"strings"
	"time"
)

// Sport identifies one monitored sport. Values are built from configuration
// at startup and treated as immutable afterwards.
type Sport struct {
	Key         string
	DisplayName string
	Emoji       string
	// Path is the schedule source's sport path, e.g. "football/college-football".
	Path string
	// SeasonRollover is "august" or "calendar"; see config.SportConfig.
	SeasonRollover string
}

// Competitor is one side of a game as reported by the schedule source.
type Competitor struct {
	DisplayName  string
	Abbreviation string
	HomeAway     string // "home" or "away"
}

// Game is one scheduled contest. ID is stable across refreshes for the same
// real-world game.
type Game struct {
	ID          string
	Name        string
	Date        time.Time
	Competitors []Competitor
}

// SportGame pairs a game with the sport it belongs to.
type SportGame struct {
	Sport Sport
	Game  Game
}

// TeamIdentity is how the organization's own team is recognized among a
// game's competitors.
type TeamIdentity struct {
	Name         string
	Abbreviation string
}

// Matches reports whether c is the organization's team: display-name
// substring match or exact abbreviation match.
func (t TeamIdentity) Matches(c Competitor) bool {
	if t.Name != "" && strings.Contains(c.DisplayName, t.Name) {
		return true
	}
	return t.Abbreviation != "" && c.Abbreviation == t.Abbreviation
}

// Opponent resolves the other side of the game. It requires exactly one
// competitor to match the organization's identity; zero or multiple matches
// mean the opponent cannot be determined and no guess is made.
func Opponent(g Game, team TeamIdentity) (Competitor, bool) {
	matched := -1
	for i, c := range g.Competitors {
		if team.Matches(c) {
			if matched >= 0 {
				return Competitor{}, false
			}
			matched = i
		}
	}
	if matched < 0 {
		return Competitor{}, false
	}
	for i, c := range g.Competitors {
		if i != matched {
			return c, true
		}
	}
	return Competitor{}, false
}

// IsHomeGame reports whether the organization's team plays at home. The
// second return is false when the team cannot be identified.
func IsHomeGame(g Game, team TeamIdentity) (home bool, ok bool) {
	for _, c := range g.Competitors {
		if team.Matches(c) {
			return c.HomeAway == "home", true
		}
	}
	return false, false
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

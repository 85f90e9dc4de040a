package espn

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"gamedaybot/internal/schedule"
	"gamedaybot/pkg/logx"
)

const userAgent = "gamedaybot/1.0"

type Config struct {
	BaseURL string
	TeamID  string
	Timeout time.Duration
}

// Client fetches team schedules from the ESPN site API. Every fetch goes
// through a per-sport circuit breaker so a flapping upstream trips fast
// instead of burning the full timeout on every refresh.
type Client struct {
	baseURL string
	teamID  string
	http    *http.Client
	log     logx.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker

	now func() time.Time
}

func NewClient(cfg Config, log logx.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:  cfg.BaseURL,
		teamID:   cfg.TeamID,
		http:     &http.Client{Timeout: timeout},
		log:      log,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
		now:      time.Now,
	}
}

// FetchSchedule returns the current season's games for sport. Transport
// failures, non-200 responses, and malformed payloads surface as errors;
// callers (the schedule store) recover them locally.
func (c *Client) FetchSchedule(ctx context.Context, sport schedule.Sport) ([]schedule.Game, error) {
	season := SeasonYear(sport, c.now())
	url := fmt.Sprintf("%s/%s/teams/%s/schedule?season=%d", c.baseURL, sport.Path, c.teamID, season)

	out, err := c.breaker(sport.Key).Execute(func() (any, error) {
		return c.getSchedule(ctx, url)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s schedule: %w", sport.Key, err)
	}

	resp := out.(*scheduleResponse)
	games := make([]schedule.Game, 0, len(resp.Events))
	for _, ev := range resp.Events {
		g, err := toGame(ev)
		if err != nil {
			c.log.Warn("skipping malformed event",
				logx.String("sport", sport.Key), logx.String("event", ev.ID), logx.Err(err))
			continue
		}
		games = append(games, g)
	}
	return games, nil
}

func (c *Client) getSchedule(ctx context.Context, url string) (*scheduleResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	var result scheduleResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

// TestConnection probes the team endpoint once, bypassing the breakers.
// Used at startup to log upstream reachability.
func (c *Client) TestConnection(ctx context.Context) bool {
	url := fmt.Sprintf("%s/football/college-football/teams/%s", c.baseURL, c.teamID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode == http.StatusOK
}

func (c *Client) breaker(key string) *gobreaker.CircuitBreaker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cb, ok := c.breakers[key]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "espn:" + key,
		Timeout: time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("breaker state change",
				logx.String("breaker", name),
				logx.String("from", from.String()),
				logx.String("to", to.String()))
		},
	})
	c.breakers[key] = cb
	return cb
}

func toGame(ev event) (schedule.Game, error) {
	date, err := parseEventTime(ev.Date)
	if err != nil {
		return schedule.Game{}, fmt.Errorf("event date %q: %w", ev.Date, err)
	}

	g := schedule.Game{ID: ev.ID, Name: ev.Name, Date: date}
	if len(ev.Competitions) > 0 {
		for _, comp := range ev.Competitions[0].Competitors {
			g.Competitors = append(g.Competitors, schedule.Competitor{
				DisplayName:  comp.Team.DisplayName,
				Abbreviation: comp.Team.Abbreviation,
				HomeAway:     comp.HomeAway,
			})
		}
	}
	return g, nil
}

// parseEventTime accepts both RFC3339 and the minute-precision variant the
// ESPN API actually emits ("2006-01-02T15:04Z").
func parseEventTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04Z07:00", s)
}

// SeasonYear determines the season to request for sport at the given time.
//
// Football ("august" rollover) runs Aug-Jan: Aug-Dec belongs to the current
// year's season and Jan-Jul to the previous year's. The basketball seasons
// ("calendar") use the calendar year year-round; that rule is preserved
// as-is from long-standing behavior (see config.SportConfig).
func SeasonYear(sport schedule.Sport, now time.Time) int {
	year := now.Year()
	if sport.SeasonRollover == "august" && now.Month() < time.August {
		return year - 1
	}
	return year
}

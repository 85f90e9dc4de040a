package config

// Config is the file-supplied part of the configuration. Everything here has
// a sensible default; the file is optional. Credentials and channel IDs come
// from the environment instead (see env.go).
type Config struct {
	Logging LoggingConfig `json:"logging"`
	ESPN    ESPNConfig    `json:"espn"`
	Ops     OpsConfig     `json:"ops,omitempty"`
	Threads ThreadsConfig `json:"threads,omitempty"`
	Team    TeamConfig    `json:"team,omitempty"`
	Sports  []SportConfig `json:"sports,omitempty"`
}

type LoggingConfig struct {
	Level   string         `json:"level"`
	Console bool           `json:"console"`
	File    LoggingFile    `json:"file"`
	Discord LoggingDiscord `json:"discord"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// LoggingDiscord mirrors the console/file sinks but posts into a channel.
// ChannelID falls back to the general channel from the environment.
type LoggingDiscord struct {
	Enabled    bool   `json:"enabled"`
	ChannelID  string `json:"channel_id,omitempty"`
	MinLevel   string `json:"min_level"`
	RatePerSec int    `json:"rate_per_sec"`
}

type ESPNConfig struct {
	BaseURL string `json:"base_url"`
	// Timeout is a Go duration string (e.g. "10s").
	Timeout string `json:"timeout"`
}

// OpsConfig controls the optional operational HTTP server (/healthz, /status).
// Prefer binding to localhost.
type OpsConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr,omitempty"`
}

// ThreadsConfig controls thread-creation timing.
//
// GameDayTime is the wall-clock HH:MM (configured timezone) at which the
// per-game trigger fires on the day of the game. Firing well before any
// kickoff keeps the thread check independent of game start times.
type ThreadsConfig struct {
	GameDayTime string `json:"game_day_time,omitempty"`
}

// TeamConfig identifies the organization's team inside the schedule source.
// Name and Abbreviation drive opponent resolution (substring / exact match
// against competitor display names).
type TeamConfig struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// SportConfig defines one monitored sport.
//
// SeasonRollover selects the season-year rule used when building schedule
// requests:
//   - "august":   month >= 8 is the current year's season, else previous year
//   - "calendar": season year equals the calendar year year-round
//
// The "calendar" rule matches the long-standing behavior for the basketball
// seasons even though it looks asymmetric next to football; it is kept
// configurable rather than silently changed.
type SportConfig struct {
	Key            string `json:"key"`
	DisplayName    string `json:"display_name"`
	Emoji          string `json:"emoji,omitempty"`
	Path           string `json:"path"`
	SeasonRollover string `json:"season_rollover,omitempty"`
}

// Default returns the built-in configuration: Kansas State athletics across
// football and both basketball programs.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "INFO",
			Console: true,
			Discord: LoggingDiscord{
				MinLevel:   "WARN",
				RatePerSec: 1,
			},
		},
		ESPN: ESPNConfig{
			BaseURL: "https://site.api.espn.com/apis/site/v2/sports",
			Timeout: "10s",
		},
		Ops: OpsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:8390",
		},
		Threads: ThreadsConfig{
			GameDayTime: "05:00",
		},
		Team: TeamConfig{
			ID:           "2306",
			Name:         "Kansas State",
			Abbreviation: "KSU",
		},
		Sports: []SportConfig{
			{
				Key:            "football",
				DisplayName:    "Football",
				Emoji:          "\U0001F3C8",
				Path:           "football/college-football",
				SeasonRollover: "august",
			},
			{
				Key:            "mens-basketball",
				DisplayName:    "Men's Basketball",
				Emoji:          "\U0001F3C0",
				Path:           "basketball/mens-college-basketball",
				SeasonRollover: "calendar",
			},
			{
				Key:            "womens-basketball",
				DisplayName:    "Women's Basketball",
				Emoji:          "\U0001F3C0",
				Path:           "basketball/womens-college-basketball",
				SeasonRollover: "calendar",
			},
		},
	}
}

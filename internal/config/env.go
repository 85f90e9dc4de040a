package config

import (
	"fmt"
	"os"
	"strings"
)

// Env holds the environment-supplied configuration. The Discord credential
// and IDs have no defaults: a missing value is a startup failure.
type Env struct {
	Token                string
	GuildID              string
	GameThreadsChannelID string
	GeneralChannelID     string
	ModeratorRoleID      string

	TeamID            string // optional override of team.id
	WeeklyRefreshCron string
	Timezone          string
}

var requiredEnvVars = []string{
	"DISCORD_TOKEN",
	"GUILD_ID",
	"GAME_THREADS_CHANNEL_ID",
	"GENERAL_CHANNEL_ID",
	"MODERATOR_ROLE_ID",
}

// LoadEnv reads and validates the environment. It reports every missing
// required variable at once rather than failing one at a time.
func LoadEnv() (Env, error) {
	var missing []string
	for _, name := range requiredEnvVars {
		if strings.TrimSpace(os.Getenv(name)) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Env{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	return Env{
		Token:                os.Getenv("DISCORD_TOKEN"),
		GuildID:              os.Getenv("GUILD_ID"),
		GameThreadsChannelID: os.Getenv("GAME_THREADS_CHANNEL_ID"),
		GeneralChannelID:     os.Getenv("GENERAL_CHANNEL_ID"),
		ModeratorRoleID:      os.Getenv("MODERATOR_ROLE_ID"),
		TeamID:               os.Getenv("TEAM_ID"),
		WeeklyRefreshCron:    getEnv("WEEKLY_REFRESH_CRON", "1 0 * * 0"),
		Timezone:             getEnv("TIMEZONE", "America/New_York"),
	}, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

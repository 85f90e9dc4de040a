package bot

import (
	"context"
	"fmt"
	"strings"

	"gamedaybot/internal/discord"
)

// Commands returns the moderator slash command set.
func (o *Orchestrator) Commands() []discord.Command {
	return []discord.Command{
		{
			Name:        "refresh-schedule",
			Description: "Manually refresh the game schedule and reconcile game day triggers",
			Handle:      o.handleRefreshSchedule,
		},
		{
			Name:        "check-games-today",
			Description: "Check for games today and create threads if needed",
			Handle:      o.handleCheckGamesToday,
		},
		{
			Name:        "bot-status",
			Description: "Check the bot status and schedule information",
			Handle:      o.handleBotStatus,
		},
	}
}

func (o *Orchestrator) handleRefreshSchedule(ctx context.Context) (string, error) {
	o.RefreshAllSchedules(ctx)
	return "✅ Schedule refreshed for all sports.", nil
}

func (o *Orchestrator) handleCheckGamesToday(ctx context.Context) (string, error) {
	created, backfilled := o.CheckToday(ctx)

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Checked today's games. Created %d thread(s).", created)
	if backfilled > 0 {
		fmt.Fprintf(&b, "\nScheduled %d new game day trigger(s).", backfilled)
	} else {
		b.WriteString("\nNo new game day triggers needed.")
	}
	return b.String(), nil
}

func (o *Orchestrator) handleBotStatus(ctx context.Context) (string, error) {
	rep := o.StatusReport()
	loc := o.store.Location()

	var b strings.Builder
	b.WriteString("\U0001F916 **Bot Status Report**\n\n")

	b.WriteString("\U0001F4CA **Game Counters:**\n")
	for _, s := range rep.Sports {
		fmt.Fprintf(&b, "%s: %d games\n", s.DisplayName, s.GameCounter)
	}

	fmt.Fprintf(&b, "\n\U0001F4C5 **Today's Games:** %d\n", len(rep.Today))
	if len(rep.Today) == 0 {
		b.WriteString("No games scheduled for today\n")
	}
	for _, t := range rep.Today {
		fmt.Fprintf(&b, "• %s: vs %s (%s)\n", t.Sport, t.Opponent, t.Kickoff.In(loc).Format("3:04 PM"))
	}

	b.WriteString("\n\U0001F5D3 **Upcoming:**\n")
	for _, s := range rep.Sports {
		if s.Upcoming == 0 {
			fmt.Fprintf(&b, "%s: no upcoming games\n", s.DisplayName)
			continue
		}
		next := s.NextGame.In(loc).Format("Mon Jan 2")
		if s.NextGameVs != "" {
			fmt.Fprintf(&b, "%s: %d upcoming (next: %s vs %s)\n", s.DisplayName, s.Upcoming, next, s.NextGameVs)
		} else {
			fmt.Fprintf(&b, "%s: %d upcoming (next: %s)\n", s.DisplayName, s.Upcoming, next)
		}
	}

	b.WriteString("\n⏰ **Next Scheduled Check:**\n")
	if rep.NextWeekly.IsZero() {
		b.WriteString("• Weekly refresh: not scheduled\n")
	} else {
		fmt.Fprintf(&b, "• Weekly refresh: %s\n", rep.NextWeekly.In(loc).Format("Mon Jan 2 3:04 PM MST"))
	}
	fmt.Fprintf(&b, "• Game day triggers: %d registered\n", rep.Triggers)

	b.WriteString("\n✅ Bot is running normally")
	return b.String(), nil
}

package threads

import (
	"fmt"

	"gamedaybot/internal/schedule"
)

const fallbackEmoji = "\U0001F3C6" // trophy

func sportEmoji(sport schedule.Sport) string {
	if sport.Emoji != "" {
		return sport.Emoji
	}
	return fallbackEmoji
}

// detailsMessage is the first post inside a new game thread.
func (d *Dispatcher) detailsMessage(game schedule.Game, sport schedule.Sport, opponent schedule.Competitor) string {
	loc := d.store.Location()
	when := game.Date.In(loc)

	versus := "vs"
	if home, ok := schedule.IsHomeGame(game, d.store.Team()); ok && !home {
		versus = "@"
	}

	return fmt.Sprintf(
		"%s **%s Game Thread**\n\n"+
			"**%s %s %s**\n"+
			"\U0001F4C5 %s\n"+
			"⏰ %s\n\n"+
			"Go %s! \U0001F49C",
		sportEmoji(sport), sport.DisplayName,
		d.store.Team().Name, versus, opponent.DisplayName,
		when.Format("Monday, January 2, 2006"),
		when.Format("3:04 PM MST"),
		d.store.Team().Name,
	)
}

// notificationMessage announces a new thread in the general channel with a
// clickable thread mention.
func (d *Dispatcher) notificationMessage(sport schedule.Sport, title string, ref ThreadRef) string {
	return fmt.Sprintf(
		"%s The game thread for **%s** is now up! Head over to <#%s> to discuss the game. Go %s! \U0001F49C",
		sportEmoji(sport), title, ref.ID, d.store.Team().Name,
	)
}

package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"gamedaybot/pkg/logx"
)

// Command is one guild slash command. Handle returns the reply text shown
// (ephemerally) to the invoking moderator; an error is logged server-side
// and surfaced to the user as a generic failure message.
type Command struct {
	Name        string
	Description string
	Handle      func(ctx context.Context) (string, error)
}

const (
	permissionDeniedMsg = "You do not have permission to use this command. Moderator role required."
	genericErrorMsg     = "An error occurred while processing your command. Please check the logs for details."
)

// RegisterCommands overwrites the guild's slash command set and installs the
// interaction dispatcher. Replies are always ephemeral.
func (a *Adapter) RegisterCommands(ctx context.Context, cmds []Command) error {
	defs := make([]*discordgo.ApplicationCommand, 0, len(cmds))
	byName := make(map[string]Command, len(cmds))
	for _, c := range cmds {
		defs = append(defs, &discordgo.ApplicationCommand{
			Name:        c.Name,
			Description: c.Description,
		})
		byName[c.Name] = c
	}

	if _, err := a.session.ApplicationCommandBulkOverwrite(a.session.State.User.ID, a.cfg.GuildID, defs, discordgo.WithContext(ctx)); err != nil {
		return err
	}

	a.session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.Type != discordgo.InteractionApplicationCommand {
			return
		}
		name := i.ApplicationCommandData().Name
		cmd, ok := byName[name]
		if !ok {
			a.replyEphemeral(i, "Unknown command")
			return
		}
		a.dispatch(i, cmd)
	})

	a.log.Info("slash commands registered", logx.Int("count", len(defs)))
	return nil
}

func (a *Adapter) dispatch(i *discordgo.InteractionCreate, cmd Command) {
	log := a.log.With(logx.String("command", cmd.Name))

	if !a.isModerator(i) {
		log.Warn("command denied: missing moderator role", logx.String("user", interactionUserID(i)))
		a.replyEphemeral(i, permissionDeniedMsg)
		return
	}

	// Defer first: handlers hit the schedule source and the Discord REST API
	// and can exceed the 3s interaction window.
	if err := a.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}); err != nil {
		log.Error("failed to defer interaction", logx.Err(err))
		return
	}

	ctx := context.Background()
	reply, err := cmd.Handle(ctx)
	if err != nil {
		log.Error("command failed", logx.Err(err))
		reply = genericErrorMsg
	}

	if _, err := a.session.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &reply}); err != nil {
		log.Error("failed to edit interaction response", logx.Err(err))
	}
}

func (a *Adapter) isModerator(i *discordgo.InteractionCreate) bool {
	if i.Member == nil {
		return false
	}
	for _, role := range i.Member.Roles {
		if role == a.cfg.ModeratorRoleID {
			return true
		}
	}
	return false
}

func (a *Adapter) replyEphemeral(i *discordgo.InteractionCreate, content string) {
	err := a.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		a.log.Error("failed to respond to interaction", logx.Err(err))
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

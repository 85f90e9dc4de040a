package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"gamedaybot/internal/threads"
	"gamedaybot/pkg/logx"
)

type Config struct {
	Token           string
	GuildID         string
	ModeratorRoleID string
}

// Adapter wraps a discordgo session with the narrow surface the rest of the
// bot consumes: channel/thread operations, message posting, and slash
// command dispatch.
type Adapter struct {
	cfg     Config
	log     logx.Logger
	session *discordgo.Session
}

func New(cfg Config, log logx.Logger) (*Adapter, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("discord token is empty")
	}
	s, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	a := &Adapter{cfg: cfg, log: log, session: s}
	s.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
		a.log.Info("gateway ready", logx.String("user", r.User.Username))
	})
	return a, nil
}

// Start opens the gateway connection.
func (a *Adapter) Start(ctx context.Context) error {
	if err := a.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	return nil
}

func (a *Adapter) Stop(ctx context.Context) error {
	return a.session.Close()
}

// HasChannel reports whether channelID resolves, preferring the gateway
// state cache over a REST round trip.
func (a *Adapter) HasChannel(ctx context.Context, channelID string) bool {
	if channelID == "" {
		return false
	}
	if ch, err := a.session.State.Channel(channelID); err == nil && ch != nil {
		return true
	}
	ch, err := a.session.Channel(channelID, discordgo.WithContext(ctx))
	return err == nil && ch != nil
}

// ListThreadNames returns the names of active and archived threads under
// channelID. Active threads are listed guild-wide by the API and filtered by
// parent channel here.
func (a *Adapter) ListThreadNames(ctx context.Context, channelID string) ([]string, error) {
	var names []string

	active, err := a.session.GuildThreadsActive(a.cfg.GuildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list active threads: %w", err)
	}
	for _, th := range active.Threads {
		if th.ParentID == channelID {
			names = append(names, th.Name)
		}
	}

	archived, err := a.session.ThreadsArchived(channelID, nil, 0, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list archived threads: %w", err)
	}
	for _, th := range archived.Threads {
		names = append(names, th.Name)
	}

	return names, nil
}

// CreateThread starts a public thread with one-day auto-archive.
func (a *Adapter) CreateThread(ctx context.Context, channelID, name string) (threads.ThreadRef, error) {
	ch, err := a.session.ThreadStart(channelID, name, discordgo.ChannelTypeGuildPublicThread, 1440, discordgo.WithContext(ctx))
	if err != nil {
		return threads.ThreadRef{}, fmt.Errorf("start thread %q: %w", name, err)
	}
	return threads.ThreadRef{ID: ch.ID, Name: ch.Name}, nil
}

// SendMessage posts plain text into a channel or thread. Also satisfies
// logx.ChannelSender for the Discord log sink.
func (a *Adapter) SendMessage(ctx context.Context, channelID, content string) error {
	_, err := a.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("send to %s: %w", channelID, err)
	}
	return nil
}

// Package discord adapts the command registry to a Discord gateway session:
// it keeps slash definitions in sync and routes interactions to commands.
package discord

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/dynacmd/internal/command"
	"github.com/keshon/dynacmd/pkg/cmd"
	"github.com/keshon/dynacmd/pkg/jobmgr"
)

type Options struct {
	Token string
	// GuildID scopes slash commands to one guild; empty registers globally.
	GuildID          string
	CacheDir         string
	PresenceInterval time.Duration
}

// Bot owns the session. Refresh requests are coalesced: any number of
// RefreshCommands calls during a sync result in one more sync.
type Bot struct {
	dg       *discordgo.Session
	registry *cmd.Registry
	opts     Options
	jobs     *jobmgr.Manager
	refresh  chan struct{}
	syncMu   sync.Mutex
	ready    chan struct{}
	once     sync.Once
}

func New(opts Options, registry *cmd.Registry) (*Bot, error) {
	dg, err := discordgo.New("Bot " + opts.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if opts.CacheDir == "" {
		opts.CacheDir = "data/commands"
	}
	if opts.PresenceInterval <= 0 {
		opts.PresenceInterval = time.Minute
	}
	return &Bot{
		dg:       dg,
		registry: registry,
		opts:     opts,
		jobs:     jobmgr.NewManager(nil),
		refresh:  make(chan struct{}, 1),
		ready:    make(chan struct{}),
	}, nil
}

// RefreshCommands asks for the slash definitions to be synced with the
// registry. It never blocks.
func (b *Bot) RefreshCommands() {
	select {
	case b.refresh <- struct{}{}:
	default:
	}
}

// Run opens the session and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	b.dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	b.dg.AddHandler(b.onReady)
	b.dg.AddHandler(b.onInteractionCreate)

	if err := b.dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer b.dg.Close()
	defer b.jobs.StopAll()

	go b.handleRefresh(ctx)

	<-ctx.Done()
	log.Info().Msg("Shutdown signal received. Cleaning up...")
	return nil
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Info().Str("user", r.User.Username).Int("guilds", len(r.Guilds)).Msg("Discord bot is running")

	b.once.Do(func() {
		close(b.ready)
		if err := b.jobs.Every(context.Background(), "presence", b.opts.PresenceInterval, b.updatePresence); err != nil {
			log.Error().Err(err).Msg("failed to start presence job")
		}
	})
	b.RefreshCommands()
}

// handleRefresh serializes slash syncs. It waits for the first Ready so the
// application ID is known.
func (b *Bot) handleRefresh(ctx context.Context) {
	select {
	case <-b.ready:
	case <-ctx.Done():
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.refresh:
			if err := b.registerCommands(); err != nil {
				log.Error().Err(err).Str("guild_id", b.opts.GuildID).Msg("failed to sync slash commands")
			}
		}
	}
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		log.Debug().Int("type", int(i.Type)).Msg("ignoring interaction")
		return
	}
	data := i.ApplicationCommandData()
	if data.CommandType != discordgo.ChatApplicationCommand {
		return
	}

	c, ok := b.registry.Get(data.Name)
	if !ok {
		log.Warn().Str("command", data.Name).Msg("unknown command")
		_ = RespondEphemeral(s, i, "Command not found!")
		return
	}

	var userID string
	if u := command.UserOf(i); u != nil {
		userID = u.ID
	}
	inv := &cmd.Invocation{
		UserID: userID,
		Args:   command.OptionArgs(data.Options),
		Data: &command.SlashInteractionContext{
			Session:   s,
			Event:     i,
			Responder: DefaultResponder,
		},
	}
	if err := c.Run(context.Background(), inv); err != nil {
		log.Error().Err(err).Str("command", data.Name).Str("user_id", userID).Msg("error running slash command")
		b.reportError(s, i, err)
	}
}

// reportError tells the caller something failed. The interaction may already
// be answered or deferred, so each response kind is tried in turn.
func (b *Bot) reportError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	msg := fmt.Sprintf("Error running command:\n```%v```", err)
	if RespondEphemeral(s, i, msg) == nil {
		return
	}
	if FollowupEphemeral(s, i, msg) != nil {
		log.Warn().Str("interaction_id", i.ID).Msg("could not report command error to the caller")
	}
}

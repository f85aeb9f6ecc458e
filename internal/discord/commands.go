package discord

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/dynacmd/internal/command"
	"github.com/keshon/dynacmd/pkg/cmd"
)

// registerCommands syncs slash commands with Discord: deletes obsolete ones
// and creates or updates those whose definition changed since the last sync.
func (b *Bot) registerCommands() error {
	b.syncMu.Lock()
	defer b.syncMu.Unlock()

	appID, err := b.appID()
	if err != nil {
		return err
	}
	scope := b.opts.GuildID

	remote, err := b.dg.ApplicationCommands(appID, scope)
	if err != nil {
		return fmt.Errorf("failed to fetch registered commands: %w", err)
	}

	cache := newHashCache(b.opts.CacheDir, scope)
	hashes := cache.Load()
	plan := planSync(buildCommandDefinitions(b.registry), remote, hashes)

	for _, rc := range plan.Delete {
		if err := b.dg.ApplicationCommandDelete(appID, scope, rc.ID); err != nil {
			log.Error().Err(err).Str("command", rc.Name).Str("guild_id", scope).Msg("failed to delete obsolete command")
			continue
		}
		delete(hashes, rc.Name)
		log.Info().Str("command", rc.Name).Str("guild_id", scope).Msg("deleted obsolete command")
	}

	for _, def := range plan.Upsert {
		if _, err := b.dg.ApplicationCommandCreate(appID, scope, def); err != nil {
			log.Error().Err(err).Str("command", def.Name).Str("guild_id", scope).Msg("failed to register command")
			delete(hashes, def.Name)
			continue
		}
		hashes[def.Name] = hashCommand(def)
		log.Info().Str("command", def.Name).Str("guild_id", scope).Msg("registered command")
		time.Sleep(25 * time.Millisecond)
	}

	if err := cache.Save(hashes); err != nil {
		log.Warn().Err(err).Msg("failed to save command hash cache")
	}
	log.Debug().Int("deleted", len(plan.Delete)).Int("upserted", len(plan.Upsert)).Str("guild_id", scope).Msg("slash commands synced")
	return nil
}

type syncPlan struct {
	Delete []*discordgo.ApplicationCommand
	Upsert []*discordgo.ApplicationCommand
}

// planSync decides what to change. A command is re-sent when its hash differs
// from the cached one or when Discord no longer has it.
func planSync(local, remote []*discordgo.ApplicationCommand, cached map[string]string) syncPlan {
	var plan syncPlan

	localNames := make(map[string]struct{}, len(local))
	for _, d := range local {
		localNames[d.Name] = struct{}{}
	}
	remoteNames := make(map[string]struct{}, len(remote))
	for _, rc := range remote {
		remoteNames[rc.Name] = struct{}{}
		if _, ok := localNames[rc.Name]; !ok {
			plan.Delete = append(plan.Delete, rc)
		}
	}

	for _, d := range local {
		_, registered := remoteNames[d.Name]
		if !registered || cached[d.Name] != hashCommand(d) {
			plan.Upsert = append(plan.Upsert, d)
		}
	}
	return plan
}

// buildCommandDefinitions returns the slash definitions of every registered
// command, walking through middleware wrappers.
func buildCommandDefinitions(r *cmd.Registry) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range r.GetAll() {
		if def := commandDefinition(c); def != nil {
			defs = append(defs, def)
		}
	}
	return defs
}

func commandDefinition(c cmd.Command) *discordgo.ApplicationCommand {
	slash, ok := cmd.Root(c).(command.SlashProvider)
	if !ok {
		return nil
	}
	def := slash.SlashDefinition()
	if def == nil {
		return nil
	}
	if def.Type == 0 {
		def.Type = discordgo.ChatApplicationCommand
	}
	return def
}

// appID returns the bot's application ID, fetching it when State is empty.
func (b *Bot) appID() (string, error) {
	if b.dg.State != nil && b.dg.State.User != nil && b.dg.State.User.ID != "" {
		return b.dg.State.User.ID, nil
	}
	u, err := b.dg.User("@me")
	if err != nil {
		return "", fmt.Errorf("failed to fetch bot user: %w", err)
	}
	return u.ID, nil
}

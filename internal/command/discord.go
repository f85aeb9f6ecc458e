// Package command holds what Discord-facing commands share: the interaction
// context handed to them at run time and the provider interfaces the adapter
// uses to register them.
package command

import (
	"github.com/bwmarrin/discordgo"
)

// SlashProvider is implemented by commands that register a chat command.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// Responder sends interaction replies. The discord package provides the
// implementation so commands never import it.
type Responder interface {
	RespondEphemeral(s *discordgo.Session, e *discordgo.InteractionCreate, content string) error
	RespondDeferredEphemeral(s *discordgo.Session, e *discordgo.InteractionCreate) error
	EditResponse(s *discordgo.Session, e *discordgo.InteractionCreate, content string) error
	FollowupEphemeral(s *discordgo.Session, e *discordgo.InteractionCreate, content string) error
}

// SlashInteractionContext is Invocation.Data for chat commands.
type SlashInteractionContext struct {
	Session   *discordgo.Session
	Event     *discordgo.InteractionCreate
	Responder Responder
}

// Reply answers privately. Content past Discord's message limit goes out as
// ephemeral followups.
func (c *SlashInteractionContext) Reply(content string) error {
	chunks := SplitMessage(content, MaxMessageLength)
	if err := c.Responder.RespondEphemeral(c.Session, c.Event, chunks[0]); err != nil {
		return err
	}
	return c.followups(chunks[1:])
}

// Defer acknowledges the interaction; finish it with Edit.
func (c *SlashInteractionContext) Defer() error {
	return c.Responder.RespondDeferredEphemeral(c.Session, c.Event)
}

// Edit fills in a deferred reply.
func (c *SlashInteractionContext) Edit(content string) error {
	chunks := SplitMessage(content, MaxMessageLength)
	if err := c.Responder.EditResponse(c.Session, c.Event, chunks[0]); err != nil {
		return err
	}
	return c.followups(chunks[1:])
}

func (c *SlashInteractionContext) followups(chunks []string) error {
	for _, chunk := range chunks {
		if err := c.Responder.FollowupEphemeral(c.Session, c.Event, chunk); err != nil {
			return err
		}
	}
	return nil
}

// UserOf returns the user behind an interaction; Member is set in guilds, User
// in DMs.
func UserOf(e *discordgo.InteractionCreate) *discordgo.User {
	if e == nil {
		return nil
	}
	if e.Member != nil && e.Member.User != nil {
		return e.Member.User
	}
	return e.User
}

// OptionArgs flattens the top-level options of a chat command into name→value.
// Channel and user options keep their snowflake string.
func OptionArgs(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]any {
	args := make(map[string]any, len(opts))
	for _, o := range opts {
		args[o.Name] = o.Value
	}
	return args
}

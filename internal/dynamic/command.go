package dynamic

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/dynacmd/internal/command"
	"github.com/keshon/dynacmd/pkg/cmd"
)

// Command is the registry entry bound to one stored definition. It holds only
// the name; the definition itself is resolved per invocation.
type Command struct {
	name       string
	dispatcher *Dispatcher
}

func NewCommand(name string, d *Dispatcher) *Command {
	return &Command{name: name, dispatcher: d}
}

func (c *Command) Name() string        { return c.name }
func (c *Command) Description() string { return fmt.Sprintf("Dynamic command %s", c.name) }

func (c *Command) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.name,
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

// Run defers the reply first: a webhook send may outlast Discord's three
// second window for the initial response.
func (c *Command) Run(ctx context.Context, inv *cmd.Invocation) error {
	sc, ok := inv.Data.(*command.SlashInteractionContext)
	if !ok {
		return fmt.Errorf("unsupported invocation data %T", inv.Data)
	}
	if err := sc.Defer(); err != nil {
		return fmt.Errorf("failed to defer reply: %w", err)
	}

	resp := c.dispatcher.Invoke(ctx, c.name, Caller{UserID: inv.UserID})
	return sc.Edit(resp.Content)
}

package manage

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/dynacmd/internal/admin"
	"github.com/keshon/dynacmd/pkg/cmd"
)

// StopCommand is /shutdown, or /restart when restart is set. It replies before
// stopping so the operator sees the acknowledgement.
type StopCommand struct {
	svc     *admin.Service
	restart bool
}

func (c *StopCommand) Name() string {
	if c.restart {
		return "restart"
	}
	return "shutdown"
}

func (c *StopCommand) Description() string {
	if c.restart {
		return "Restart the bot"
	}
	return "Shut the bot down"
}

func (c *StopCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *StopCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	sc, err := slashContext(inv)
	if err != nil {
		return err
	}
	if err := c.svc.Authorize(inv.UserID); err != nil {
		return sc.Reply(describe(err, ""))
	}

	msg := "Shutdown..."
	if c.restart {
		msg = "Restarting..."
	}
	if err := sc.Reply(msg); err != nil {
		return err
	}
	if c.restart {
		return c.svc.Restart(inv.UserID)
	}
	return c.svc.Shutdown(inv.UserID)
}

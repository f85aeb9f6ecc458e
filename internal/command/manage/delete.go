package manage

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/dynacmd/internal/admin"
	"github.com/keshon/dynacmd/internal/storage"
	"github.com/keshon/dynacmd/pkg/cmd"
)

type DeleteCommand struct{ svc *admin.Service }

func (c *DeleteCommand) Name() string        { return "deletecmd" }
func (c *DeleteCommand) Description() string { return "Delete a command" }

func (c *DeleteCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options:     []*discordgo.ApplicationCommandOption{nameOption()},
	}
}

func (c *DeleteCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	sc, err := slashContext(inv)
	if err != nil {
		return err
	}
	name := storage.NormalizeName(inv.Arg("name"))
	if err := c.svc.Delete(ctx, inv.UserID, name); err != nil {
		return sc.Reply(describe(err, name))
	}
	return sc.Reply(fmt.Sprintf("Command `%s` deleted!", name))
}

type ListCommand struct{ svc *admin.Service }

func (c *ListCommand) Name() string        { return "listcmd" }
func (c *ListCommand) Description() string { return "List dynamic commands" }

func (c *ListCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
	}
}

func (c *ListCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	sc, err := slashContext(inv)
	if err != nil {
		return err
	}
	entries, err := c.svc.List(ctx, inv.UserID)
	if err != nil {
		return sc.Reply(describe(err, ""))
	}
	return sc.Reply(formatList(entries))
}

func formatList(entries []admin.Entry) string {
	if len(entries) == 0 {
		return "No commands defined yet."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%d commands**\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&sb, "`/%s` - %s\n", e.Name, e.Kind)
	}
	return sb.String()
}

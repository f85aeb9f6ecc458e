package manage

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/dynacmd/internal/admin"
	"github.com/keshon/dynacmd/internal/definition"
	"github.com/keshon/dynacmd/internal/storage"
	"github.com/keshon/dynacmd/pkg/cmd"
)

type CreateCommand struct{ svc *admin.Service }

func (c *CreateCommand) Name() string        { return "createcmd" }
func (c *CreateCommand) Description() string { return "Create a text command" }

func (c *CreateCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			nameOption(),
			stringOption("content", "Text the command replies with", true),
		},
	}
}

func (c *CreateCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	sc, err := slashContext(inv)
	if err != nil {
		return err
	}
	name := storage.NormalizeName(inv.Arg("name"))
	if err := c.svc.CreateText(ctx, inv.UserID, name, inv.Arg("content")); err != nil {
		return sc.Reply(describe(err, name))
	}
	return sc.Reply(fmt.Sprintf("Command `%s` created!", name))
}

type CreateWebhookCommand struct{ svc *admin.Service }

func (c *CreateWebhookCommand) Name() string        { return "createwebhookcmd" }
func (c *CreateWebhookCommand) Description() string { return "Create a webhook command" }

func (c *CreateWebhookCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			nameOption(),
			stringOption("webhook_url", "Webhook URL the embed is posted to", true),
			stringOption("title", "Embed title", true),
			stringOption("description", "Embed description", true),
			{
				Type:         discordgo.ApplicationCommandOptionChannel,
				Name:         "channel",
				Description:  "Channel the webhook posts in",
				Required:     true,
				ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews},
			},
			stringOption("color", "Embed color, #RRGGBB or decimal (default "+definition.DefaultColorHex+")", false),
			stringOption("thumbnail", "Thumbnail image URL", false),
		},
	}
}

func (c *CreateWebhookCommand) Run(ctx context.Context, inv *cmd.Invocation) error {
	sc, err := slashContext(inv)
	if err != nil {
		return err
	}
	in := admin.WebhookInput{
		Name:        storage.NormalizeName(inv.Arg("name")),
		URL:         inv.Arg("webhook_url"),
		Title:       inv.Arg("title"),
		Description: inv.Arg("description"),
		ChannelID:   inv.Arg("channel"),
		Color:       inv.Arg("color"),
		Thumbnail:   inv.Arg("thumbnail"),
	}
	if err := c.svc.CreateWebhook(ctx, inv.UserID, in); err != nil {
		return sc.Reply(describe(err, in.Name))
	}
	channel := &discordgo.Channel{ID: in.ChannelID}
	return sc.Reply(fmt.Sprintf("Webhook command `%s` created and linked to %s!", in.Name, channel.Mention()))
}

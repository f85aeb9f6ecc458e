// Package manage holds the built-in slash commands operators use to define,
// remove and list dynamic commands and to stop or restart the bot.
package manage

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/dynacmd/internal/admin"
	"github.com/keshon/dynacmd/internal/command"
	"github.com/keshon/dynacmd/internal/dynamic"
	"github.com/keshon/dynacmd/internal/storage"
	"github.com/keshon/dynacmd/pkg/cmd"
)

const (
	MsgDenied     = "You don't have permission!"
	MsgBadName    = "Invalid name. Use 1-32 lowercase letters, digits, `-` or `_`."
	MsgMissingURL = "A webhook URL is required."
)

// All returns the built-in commands bound to svc.
func All(svc *admin.Service) []cmd.Command {
	return []cmd.Command{
		&CreateCommand{svc: svc},
		&CreateWebhookCommand{svc: svc},
		&DeleteCommand{svc: svc},
		&ListCommand{svc: svc},
		&StopCommand{svc: svc},
		&StopCommand{svc: svc, restart: true},
	}
}

// Names lists the names of the built-in commands.
func Names() []string {
	var names []string
	for _, c := range All(nil) {
		names = append(names, c.Name())
	}
	return names
}

func slashContext(inv *cmd.Invocation) (*command.SlashInteractionContext, error) {
	sc, ok := inv.Data.(*command.SlashInteractionContext)
	if !ok {
		return nil, fmt.Errorf("unsupported invocation data %T", inv.Data)
	}
	return sc, nil
}

// describe turns an admin error into the reply shown to the operator.
func describe(err error, name string) string {
	switch {
	case errors.Is(err, admin.ErrPermissionDenied):
		return MsgDenied
	case errors.Is(err, storage.ErrAlreadyExists):
		return fmt.Sprintf("Command `%s` already exists!", name)
	case errors.Is(err, storage.ErrNotFound):
		return dynamic.MsgNotFound
	case errors.Is(err, storage.ErrInvalidName):
		return MsgBadName
	case errors.Is(err, admin.ErrReservedName):
		return fmt.Sprintf("`%s` is reserved for a built-in command.", name)
	case errors.Is(err, admin.ErrMissingURL):
		return MsgMissingURL
	default:
		return fmt.Sprintf("Something went wrong:\n```%v```", err)
	}
}

func stringOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

// nameOption is the name argument shared by the create and delete commands.
func nameOption() *discordgo.ApplicationCommandOption {
	minLen := 1
	opt := stringOption("name", "Command name", true)
	opt.MinLength = &minLen
	opt.MaxLength = 32
	return opt
}

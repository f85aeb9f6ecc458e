package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/keshon/dynacmd/internal/command"
)

// responder implements command.Responder so commands reply without importing
// this package.
type responder struct{}

func (responder) RespondEphemeral(s *discordgo.Session, e *discordgo.InteractionCreate, content string) error {
	return RespondEphemeral(s, e, content)
}

func (responder) RespondDeferredEphemeral(s *discordgo.Session, e *discordgo.InteractionCreate) error {
	return RespondDeferredEphemeral(s, e)
}

func (responder) EditResponse(s *discordgo.Session, e *discordgo.InteractionCreate, content string) error {
	return EditResponse(s, e, content)
}

func (responder) FollowupEphemeral(s *discordgo.Session, e *discordgo.InteractionCreate, content string) error {
	return FollowupEphemeral(s, e, content)
}

// DefaultResponder is injected into command contexts.
var DefaultResponder command.Responder = responder{}

// RespondEphemeral sends an ephemeral message response to an interaction.
func RespondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         content,
			Flags:           discordgo.MessageFlagsEphemeral,
			AllowedMentions: &discordgo.MessageAllowedMentions{},
		},
	})
}

// RespondDeferredEphemeral acknowledges an interaction; the ephemeral reply
// follows through EditResponse.
func RespondDeferredEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
}

// EditResponse replaces the content of the original interaction response.
func EditResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content:         &content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	return err
}

// FollowupEphemeral sends an ephemeral followup message.
func FollowupEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content:         content,
		Flags:           discordgo.MessageFlagsEphemeral,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	return err
}

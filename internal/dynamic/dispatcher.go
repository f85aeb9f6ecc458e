// Package dynamic turns stored definitions into live commands: the dispatcher
// executes one by name, the loader keeps the registry in step with the store.
package dynamic

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/keshon/dynacmd/internal/definition"
	"github.com/keshon/dynacmd/internal/storage"
	"github.com/keshon/dynacmd/internal/webhook"
)

const (
	MsgNotFound   = "Command not found!"
	MsgEmptyReply = "_(this command has no content)_"
)

// Sender delivers a webhook message.
type Sender interface {
	Send(ctx context.Context, m webhook.Message) error
}

// Caller identifies who invoked a command.
type Caller struct {
	UserID string
}

// Response is the private reply to the caller.
type Response struct {
	Content string
	// Sent is true when a webhook delivery happened.
	Sent bool
}

// Dispatcher executes definitions. It reads the store on every call, so a
// definition deleted out of band stops answering immediately.
type Dispatcher struct {
	store  storage.Store
	sender Sender
}

func NewDispatcher(store storage.Store, sender Sender) *Dispatcher {
	return &Dispatcher{store: store, sender: sender}
}

// Invoke never returns an error: every failure becomes reply text.
func (d *Dispatcher) Invoke(ctx context.Context, name string, caller Caller) Response {
	raw, err := d.store.Read(ctx, name)
	if errors.Is(err, storage.ErrNotFound) {
		return Response{Content: MsgNotFound}
	}
	if err != nil {
		log.Error().Err(err).Str("command", name).Msg("failed to read definition")
		return Response{Content: fmt.Sprintf("Failed to load command `%s`:\n```%v```", name, err)}
	}

	def := definition.Parse(raw)
	if def.Kind == definition.KindWebhook {
		return d.relay(ctx, name, caller, def.Webhook)
	}

	if def.Text == "" {
		return Response{Content: MsgEmptyReply}
	}
	return Response{Content: def.Text}
}

func (d *Dispatcher) relay(ctx context.Context, name string, caller Caller, w *definition.WebhookDefinition) Response {
	err := d.sender.Send(ctx, webhook.Message{
		URL:         w.URL,
		Title:       w.Title,
		Description: w.Description,
		Color:       w.Color,
		Thumbnail:   w.Thumbnail,
	})
	if err != nil {
		log.Warn().Err(err).Str("command", name).Str("user_id", caller.UserID).Msg("webhook delivery failed")
		return Response{Content: fmt.Sprintf("Error while sending the webhook:\n```%v```", err)}
	}

	log.Info().Str("command", name).Str("user_id", caller.UserID).Str("channel_id", w.ChannelID).Msg("webhook embed sent")
	if w.ChannelID == "" {
		return Response{Content: fmt.Sprintf("Embed `%s` sent!", name), Sent: true}
	}
	channel := &discordgo.Channel{ID: w.ChannelID}
	return Response{Content: fmt.Sprintf("Embed `%s` sent to %s!", name, channel.Mention()), Sent: true}
}

package middleware

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/keshon/dynacmd/internal/command"
	"github.com/keshon/dynacmd/pkg/cmd"
)

// WithCommandLogger logs every invocation with its caller, outcome and
// duration.
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			start := time.Now()
			err := c.Run(ctx, inv)

			ev := log.Info()
			if err != nil {
				ev = log.Error().Err(err)
			}
			ev = ev.Str("invocation_id", uuid.NewString()).
				Str("command", c.Name()).
				Str("user_id", inv.UserID).
				Dur("took", time.Since(start))
			if sc, ok := inv.Data.(*command.SlashInteractionContext); ok && sc.Event != nil {
				ev = ev.Str("guild_id", sc.Event.GuildID).Str("channel_id", sc.Event.ChannelID)
			}
			ev.Msg("command executed")
			return err
		})
	}
}

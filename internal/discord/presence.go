package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// updatePresence shows the total member count of every guild the bot is in.
func (b *Bot) updatePresence(ctx context.Context) error {
	return b.dg.UpdateStatusComplex(presence(memberCount(b.dg.State)))
}

func memberCount(state *discordgo.State) int {
	if state == nil {
		return 0
	}
	state.RLock()
	defer state.RUnlock()
	total := 0
	for _, g := range state.Guilds {
		total += g.MemberCount
	}
	return total
}

func presence(members int) discordgo.UpdateStatusData {
	return discordgo.UpdateStatusData{
		Status: string(discordgo.StatusOnline),
		Activities: []*discordgo.Activity{{
			Name: fmt.Sprintf("meowing at %d members", members),
			Type: discordgo.ActivityTypeGame,
		}},
	}
}

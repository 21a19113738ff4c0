// Package events provides event handlers for guild (server) events
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/database"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const groupWriteTimeout = 10 * time.Second

// GroupRegistry is the group roster kept in sync with the servers the bot is in
type GroupRegistry interface {
	AddGroup(ctx context.Context, group models.Group) error
	RemoveGroup(ctx context.Context, id string) error
}

var _ GroupRegistry = (*database.GroupStore)(nil)

// RegisterGuildEvents registers all guild-related event handlers. groups may
// be nil, in which case joins and leaves are only logged.
func RegisterGuildEvents(client *discord.ExtendedClient, groups GroupRegistry) {
	client.EventHandler.OnGuildCreate(func(s *discordgo.Session, g *discordgo.GuildCreate) {
		onGuildCreate(s, g, groups)
	})
	client.EventHandler.OnGuildDelete(func(s *discordgo.Session, g *discordgo.GuildDelete) {
		onGuildDelete(g, groups)
	})
	client.EventHandler.OnGuildBanAdd(onGuildBanAdd)
	client.EventHandler.OnGuildBanRemove(onGuildBanRemove)
}

// groupFromGuild converts a guild into its roster entry
func groupFromGuild(g *discordgo.Guild) models.Group {
	return models.Group{
		ID:       g.ID,
		Title:    g.Name,
		JoinedAt: g.JoinedAt,
	}
}

// onGuildCreate fires on startup for every server and again on each join
func onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate, groups GroupRegistry) {
	if g.Unavailable {
		return
	}

	if groups != nil {
		ctx, cancel := context.WithTimeout(context.Background(), groupWriteTimeout)
		err := groups.AddGroup(ctx, groupFromGuild(g.Guild))
		cancel()
		if err != nil {
			logger.Error(fmt.Sprintf("Error registrando grupo %s: %v", g.ID, err), "Guild")
		}
	}

	// Los GuildCreate del arranque no son altas nuevas
	if g.JoinedAt.Before(time.Now().Add(-10 * time.Second)) {
		return
	}

	logger.Info(fmt.Sprintf("➕ Bot agregado a servidor: %s (ID: %s)", g.Name, g.ID), "Guild")
	logger.Debug(fmt.Sprintf("   Miembros: %d | Canales: %d", g.MemberCount, len(g.Channels)), "Guild")

	if g.SystemChannelID == "" {
		return
	}

	welcomeEmbed := &discordgo.MessageEmbed{
		Title:       "¡Gracias por agregarme! 🛡️",
		Description: "Hola, soy **PancyGuard**. Este servidor forma parte de la red de grupos moderados.",
		Color:       0x00ff00,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "🔧 Moderación",
				Value:  "`/mod warn`, `/mod unwarn` y `/mod warns`",
				Inline: true,
			},
			{
				Name:   "❓ Ayuda",
				Value:  "Usa `/help` para más información",
				Inline: true,
			},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Los baneos por advertencias se aplican en todos los grupos",
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if _, err := s.ChannelMessageSendEmbed(g.SystemChannelID, welcomeEmbed); err != nil {
		logger.Error(fmt.Sprintf("Error enviando mensaje de bienvenida: %v", err), "Guild")
	}
}

// onGuildDelete is called when the bot is removed from a server. An outage
// also produces GuildDelete, flagged as Unavailable, and keeps the group.
func onGuildDelete(g *discordgo.GuildDelete, groups GroupRegistry) {
	if g.Unavailable {
		logger.Warn(fmt.Sprintf("Servidor %s no disponible temporalmente", g.ID), "Guild")
		return
	}

	logger.Info(fmt.Sprintf("➖ Bot removido del servidor ID: %s", g.ID), "Guild")

	if groups == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), groupWriteTimeout)
	defer cancel()
	if err := groups.RemoveGroup(ctx, g.ID); err != nil {
		logger.Error(fmt.Sprintf("Error eliminando grupo %s: %v", g.ID, err), "Guild")
	}
}

func onGuildBanAdd(s *discordgo.Session, b *discordgo.GuildBanAdd) {
	if b.User == nil {
		return
	}
	logger.Debug(fmt.Sprintf("🚫 %s baneado en %s", b.User.ID, b.GuildID), "Guild")
}

func onGuildBanRemove(s *discordgo.Session, b *discordgo.GuildBanRemove) {
	if b.User == nil {
		return
	}
	logger.Debug(fmt.Sprintf("✅ %s desbaneado en %s", b.User.ID, b.GuildID), "Guild")
}

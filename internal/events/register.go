// Package events provides a registry for organizing bot events.
// Events are organized by category (ready, guild, message).
package events

import (
	"fmt"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
)

// RegisterAll registers all events with the Discord client. groups receives
// server joins and leaves and may be nil.
func RegisterAll(client *discord.ExtendedClient, groups GroupRegistry) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	// Ready event (bot startup)
	RegisterReadyEvent(client)

	// Guild events (group roster, bans)
	RegisterGuildEvents(client, groups)

	// Message events (!unwarn)
	RegisterMessageEvents(client)

	logger.Success(fmt.Sprintf("✅ %d eventos registrados correctamente", client.EventHandler.Count()), "Events")
}

// Package commands provides a registry for organizing bot commands.
// Commands are organized in subdirectories by category (utils, mod)
package commands

import (
	"github.com/PancyStudios/PancyGuardGo/internal/commands/mod"
	"github.com/PancyStudios/PancyGuardGo/internal/commands/utils"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
)

// RegisterAll registers all commands with the Discord client
func RegisterAll(client *discord.ExtendedClient) {
	// /utils ping, /utils status, /utils help, /utils stats
	utils.RegisterUtilsCommands(client)

	// /mod warn, /mod warns, /mod unwarn
	mod.RegisterModCommands(client)
}

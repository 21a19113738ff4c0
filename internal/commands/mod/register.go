// Package mod provides moderation commands organized as subcommands under /mod
// Each command is in its own file for better organization
package mod

import (
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
)

// RegisterModCommands registers all moderation commands as /mod subcommands
func RegisterModCommands(client *discord.ExtendedClient) {
	warnCmd := createWarnCommand()
	warningsCmd := createWarningsCommand()
	unwarnCmd := createUnwarnCommand()

	modGroup := client.CommandHandler.BuildCommandGroup(
		"mod",
		"Comandos de moderación",
		warnCmd,
		warningsCmd,
		unwarnCmd,
	)

	client.CommandHandler.AddCommand(modGroup)
}

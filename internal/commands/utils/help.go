package utils

import "github.com/PancyStudios/PancyGuardGo/pkg/discord"

const helpText = "📖 **Ayuda de PancyGuard Go**\n\n" +
	"**Comandos disponibles:**\n" +
	"• `/utils status` - Latencia y estado de las conexiones\n" +
	"• `/utils stats` - Estadísticas de moderación\n" +
	"• `/mod warn <usuario> <razón>` - Advierte a un usuario en todos los grupos\n" +
	"• `/mod warns [usuario]` - Lista las advertencias activas\n" +
	"• `/mod unwarn <usuario> [fecha]` - Quita la última advertencia activa, o la de esa fecha\n" +
	"• `!unwarn @usuario [fecha]` - Igual que `/mod unwarn`, para administradores\n\n" +
	"La fecha acepta `AAAA`, `AAAA-MM`, `AAAA-MM-DD`, `AAAA-MM-DD HH`, `HH:MM`, `HH:MM:SS` y `HH:MM:SS.mmm`."

// createHelpCommand creates the /utils help subcommand
func createHelpCommand() *discord.Command {
	return discord.NewCommand(
		"help",
		"Muestra información de ayuda",
		"utils",
		helpHandler,
	)
}

func helpHandler(ctx *discord.CommandContext) error {
	return ctx.ReplyEphemeral(helpText)
}

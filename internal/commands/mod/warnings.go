package mod

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/PancyStudios/PancyGuardGo/pkg/warns"
	"github.com/bwmarrin/discordgo"
)

const embedFooter = "💫 - Developed by PancyStudios"

// createWarningsCommand creates the /mod warns subcommand
func createWarningsCommand() *discord.Command {
	return discord.NewCommand(
		"warns",
		"Lista de advertencias activas de un usuario",
		"mod",
		warningsHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "[STAFF] Usuario a buscar (opcional)",
			Required:    false,
		},
	).RequiresDatabase()
}

func warningsHandler(ctx *discord.CommandContext) error {
	svc := Service()
	if svc == nil {
		return ctx.ReplyEphemeral(msgNoService)
	}

	targetUser := ctx.GetUserOption("usuario")
	isModerator := discord.HasPermissions(ctx.Permissions(), discordgo.PermissionManageMessages)

	if targetUser == nil {
		targetUser = ctx.User()
	} else if targetUser.ID != ctx.User().ID && !isModerator {
		return ctx.ReplyEphemeral("❌ No tienes permisos para ver la lista de advertencias de otro usuario.")
	}

	embedLoading := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🔖 - Lista de advertencias de %s", targetUser.Username),
		Description: "Espere un momento mientras obtenemos las advertencias...\n\n> 💫 - **Cantidad de advertencias:** Desconocido\n> 🕒 - **Fecha de consulta:** Cargando...",
		Color:       0x3498db,
		Footer:      &discordgo.MessageEmbedFooter{Text: embedFooter},
	}
	if err := ctx.ReplyEphemeralEmbed(embedLoading); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		c, cancel := ctx.Context()
		defer cancel()

		user, active, err := svc.ActiveWarnings(c, targetUser.ID)
		if err != nil && !stderrors.Is(err, warns.ErrUserUnknown) {
			logger.Error(fmt.Sprintf("Error DB Warnings: %v", err), "CMD-Warnings")
			_ = ctx.EditReply(msgInternalError)
			return
		}

		_ = ctx.EditReplyEmbed(warningsEmbed(targetUser, user, active, svc.Threshold, isModerator, time.Now()))
	}()

	return nil
}

// warningsEmbed renders the active warnings of target. Moderators also see
// who issued each warning.
func warningsEmbed(target *discordgo.User, user *models.User, active []models.Warning, threshold int, isModerator bool, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("🔖 - Lista de advertencias de %s (%s)", target.Username, target.ID),
		Footer: &discordgo.MessageEmbedFooter{Text: embedFooter},
	}

	if len(active) == 0 {
		embed.Color = 0x00FF00
		embed.Description = fmt.Sprintf("No se han encontrado advertencias activas del usuario\n\n> 💫 - **Cantidad de advertencias:** 0/%d\n> 🕒 - **Fecha de consulta:** <t:%d>", threshold, now.Unix())
		return embed
	}

	embed.Color = 0xFFA500

	var b strings.Builder
	for _, w := range active {
		fmt.Fprintf(&b, "> **Advertencia:** %s\n", warns.WarningLabel(w))
		if w.HasDate() {
			fmt.Fprintf(&b, "> **Fecha:** `%s`\n", warns.CanonicalDate(*w.Date))
		}
		if isModerator {
			moderator := "Desconocido"
			if w.Moderator != "" {
				moderator = "<@" + w.Moderator + ">"
			}
			fmt.Fprintf(&b, "> **Moderador:** %s\n", moderator)
		}
		b.WriteString("\n")
	}

	if user != nil && user.IsBanned() {
		b.WriteString("> 🚫 - **Estado:** Baneado de los grupos\n")
	}
	fmt.Fprintf(&b, "> 💫 - **Cantidad de advertencias:** %d/%d\n> 🕒 - **Fecha de consulta:** <t:%d>", len(active), threshold, now.Unix())

	embed.Description = b.String()
	return embed
}

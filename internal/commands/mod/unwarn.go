package mod

import (
	"fmt"
	"strings"

	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/PancyStudios/PancyGuardGo/pkg/mqtt"
	"github.com/PancyStudios/PancyGuardGo/pkg/warns"
	"github.com/bwmarrin/discordgo"
)

// createUnwarnCommand creates the /mod unwarn subcommand
func createUnwarnCommand() *discord.Command {
	return discord.NewCommand(
		"unwarn",
		"Quita una advertencia activa de un usuario",
		"mod",
		unwarnHandler,
	).WithOptions(
		&discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionUser,
			Name:        "usuario",
			Description: "Usuario al que quitar la advertencia",
			Required:    true,
		},
		&discordgo.ApplicationCommandOption{
			Type:         discordgo.ApplicationCommandOptionString,
			Name:         "fecha",
			Description:  "Fecha de la advertencia (AAAA-MM-DD HH:MM...). Por defecto la última",
			Required:     false,
			Autocomplete: true,
		},
	).WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers).
		WithAutoComplete(unwarnAutoComplete).
		RequiresDatabase()
}

// unwarnHandler handles the /mod unwarn command
func unwarnHandler(ctx *discord.CommandContext) error {
	svc := Service()
	if svc == nil {
		return ctx.ReplyEphemeral(msgNoService)
	}

	var targets []string
	target := ctx.GetUserOption("usuario")
	if target != nil {
		targets = append(targets, target.ID)
	}
	date := ctx.GetStringOption("fecha")
	actor := ctx.User()

	if err := ctx.Defer(); err != nil {
		return err
	}

	go func() {
		defer errors.RecoverMiddleware()()

		c, cancel := ctx.Context()
		defer cancel()

		result, err := svc.Unwarn(c, warns.UnwarnRequest{
			Targets:       targets,
			Disambiguator: date,
			Actor:         actor.ID,
		})
		if err != nil {
			if warns.Code(err) == "internal" {
				logger.Error(fmt.Sprintf("Error en unwarn: %v", err), "CMD-Unwarn")
			}
			_ = ctx.EditReply(UnwarnErrorReply(err))
			return
		}

		mqtt.PublishUnwarn(Events(), actor.ID, "slash", result)

		if err := ctx.EditReply(UnwarnReply(actor.Mention(), target.Mention(), result)); err != nil {
			logger.Error(fmt.Sprintf("Error editando respuesta de unwarn: %v", err), "CMD-Unwarn")
		}
	}()

	return nil
}

// unwarnAutoComplete suggests the dates of the user's active warnings
func unwarnAutoComplete(ctx *discord.CommandContext) {
	svc := Service()
	if svc == nil {
		return
	}

	go func() {
		defer errors.RecoverMiddleware()()

		target := ctx.GetUserOption("usuario")
		if target == nil {
			_ = ctx.SendAutoCompleteChoices(nil)
			return
		}

		c, cancel := ctx.Context()
		defer cancel()

		_, active, err := svc.ActiveWarnings(c, target.ID)
		if err != nil {
			_ = ctx.SendAutoCompleteChoices(nil)
			return
		}

		_ = ctx.SendAutoCompleteChoices(dateChoices(active, ctx.GetStringOption("fecha")))
	}()
}

// dateChoices lists the dated warnings whose date starts with typed, newest
// first, capped at Discord's 25 choices
func dateChoices(active []models.Warning, typed string) []*discordgo.ApplicationCommandOptionChoice {
	typed = strings.ToUpper(strings.Replace(strings.TrimSpace(typed), " ", "T", 1))

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, 25)
	for i := len(active) - 1; i >= 0 && len(choices) < 25; i-- {
		w := active[i]
		if !w.HasDate() {
			continue
		}
		date := warns.CanonicalDate(*w.Date)
		if !strings.HasPrefix(date, typed) {
			continue
		}

		name := fmt.Sprintf("%s - %s", date, warns.WarningLabel(w))
		if len([]rune(name)) > 100 {
			name = string([]rune(name)[:97]) + "..."
		}
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  name,
			Value: date,
		})
	}
	return choices
}

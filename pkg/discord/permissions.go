package discord

import (
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/database"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// ErrMissingPermissions is returned when a member cannot run a command
var ErrMissingPermissions = errors.New("missing permissions")

// ErrCommandUnavailable is returned when the bot itself cannot run a command
var ErrCommandUnavailable = errors.New("command unavailable")

// HasPermissions reports whether perms grants every bit of required.
// Administrator grants everything.
func HasPermissions(perms, required int64) bool {
	if required == 0 || perms&discordgo.PermissionAdministrator != 0 {
		return true
	}
	return perms&required == required
}

// invocation is what a command's requirements are checked against
type invocation struct {
	InGuild     bool
	MemberPerms int64
	AppPerms    int64
	DBOnline    bool
}

// checkCommand returns the denial to show for cmd, or "" when it may run
func checkCommand(cmd *Command, inv invocation) (string, error) {
	if cmd.UserPermissions != 0 && (!inv.InGuild || !HasPermissions(inv.MemberPerms, cmd.UserPermissions)) {
		return "No tienes permisos para usar este comando.", ErrMissingPermissions
	}
	if cmd.BotPermissions != 0 && inv.InGuild && !HasPermissions(inv.AppPerms, cmd.BotPermissions) {
		return "No tengo los permisos necesarios en este servidor.", ErrCommandUnavailable
	}
	if cmd.RequiresDB && !inv.DBOnline {
		return "La base de datos no está disponible. Inténtalo más tarde.", ErrCommandUnavailable
	}
	return "", nil
}

// PermissionMiddleware verifica que el miembro, el bot y la base de datos
// cumplan los requisitos del comando y responde con un aviso si no
func (c *ExtendedClient) PermissionMiddleware(ctx *CommandContext, cmd *Command) error {
	denial, err := checkCommand(cmd, invocation{
		InGuild:     ctx.Interaction.GuildID != "",
		MemberPerms: ctx.Permissions(),
		AppPerms:    ctx.AppPermissions(),
		DBOnline:    database.Get().Connected(),
	})
	if err == nil {
		return nil
	}

	title := "🚫 Acceso Denegado"
	if errors.Is(err, ErrCommandUnavailable) {
		title = "⚠️ Comando no disponible"
	}
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: denial,
		Color:       0xFF0000,
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	if replyErr := ctx.ReplyEphemeralEmbed(embed); replyErr != nil {
		logger.Debug("No se pudo responder al miembro: "+replyErr.Error(), "PermissionMiddleware")
	}

	userID := ""
	if user := ctx.User(); user != nil {
		userID = user.ID
	}
	logger.Warn(fmt.Sprintf("Usuario %s no pudo usar %s: %v", userID, cmd.Name, err), "PermissionMiddleware")
	return err
}

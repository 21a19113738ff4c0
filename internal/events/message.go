// Package events provides event handlers for message events
package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyGuardGo/internal/commands/mod"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/mqtt"
	"github.com/PancyStudios/PancyGuardGo/pkg/warns"
	"github.com/bwmarrin/discordgo"
)

const (
	unwarnPrefix    = "!unwarn"
	textCmdTimeout  = 30 * time.Second
	errorReplyDelay = 5 * time.Second
)

// RegisterMessageEvents registers all message-related event handlers
func RegisterMessageEvents(client *discord.ExtendedClient) {
	client.EventHandler.OnMessageCreate(onMessageCreate)
}

// onMessageCreate is called when a new message is created
func onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	botID := ""
	if s.State != nil && s.State.User != nil {
		botID = s.State.User.ID
	}

	args, ok := parseUnwarnCommand(m.Message, botID)
	if !ok {
		return
	}

	perms, err := s.UserChannelPermissions(m.Author.ID, m.ChannelID)
	if err != nil {
		logger.Debug(fmt.Sprintf("No se pudieron obtener permisos de %s: %v", m.Author.ID, err), "Message")
		return
	}
	// Solo administradores; el resto se ignora en silencio
	if !discord.HasPermissions(perms, discordgo.PermissionAdministrator) {
		return
	}

	go runTextUnwarn(s, m, args)
}

// unwarnArgs are the arguments of a `!unwarn` message
type unwarnArgs struct {
	Targets []string
	Date    string
}

// parseUnwarnCommand recognises `!unwarn @user [fecha]`. Mentioned users
// (other than the bot) and the author of a replied-to message are the
// targets; every other token forms the date.
func parseUnwarnCommand(msg *discordgo.Message, botID string) (unwarnArgs, bool) {
	fields := strings.Fields(msg.Content)
	if len(fields) == 0 || !strings.EqualFold(fields[0], unwarnPrefix) {
		return unwarnArgs{}, false
	}

	var args unwarnArgs
	seen := make(map[string]bool)
	addTarget := func(id string) {
		if id == "" || id == botID || seen[id] {
			return
		}
		seen[id] = true
		args.Targets = append(args.Targets, id)
	}

	for _, u := range msg.Mentions {
		if u != nil {
			addTarget(u.ID)
		}
	}
	if ref := msg.ReferencedMessage; ref != nil && ref.Author != nil && !ref.Author.Bot {
		addTarget(ref.Author.ID)
	}

	rest := make([]string, 0, len(fields)-1)
	for _, f := range fields[1:] {
		if isMentionToken(f) {
			continue
		}
		rest = append(rest, f)
	}
	args.Date = strings.Join(rest, " ")

	return args, true
}

// isMentionToken reports whether f is a user mention (<@id> or <@!id>)
func isMentionToken(f string) bool {
	return strings.HasPrefix(f, "<@") && strings.HasSuffix(f, ">") && !strings.HasPrefix(f, "<@&")
}

func runTextUnwarn(s *discordgo.Session, m *discordgo.MessageCreate, args unwarnArgs) {
	defer errors.RecoverMiddleware()()

	svc := mod.Service()
	if svc == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), textCmdTimeout)
	defer cancel()

	result, err := svc.Unwarn(ctx, warns.UnwarnRequest{
		Targets:       args.Targets,
		Disambiguator: args.Date,
		Actor:         m.Author.ID,
	})
	if err != nil {
		if warns.Code(err) == "internal" {
			logger.Error(fmt.Sprintf("Error en !unwarn: %v", err), "Message")
		}
		replyAndDelete(s, m, mod.UnwarnErrorReply(err))
		return
	}

	mqtt.PublishUnwarn(mod.Events(), m.Author.ID, "text", result)

	reply := mod.UnwarnReply(m.Author.Mention(), "<@"+result.User.ID+">", result)
	if _, err := s.ChannelMessageSendReply(m.ChannelID, reply, m.Reference()); err != nil {
		logger.Error(fmt.Sprintf("Error enviando respuesta: %v", err), "Message")
	}
}

// replyAndDelete sends an error reply and removes it after a few seconds
func replyAndDelete(s *discordgo.Session, m *discordgo.MessageCreate, content string) {
	msg, err := s.ChannelMessageSendReply(m.ChannelID, content, m.Reference())
	if err != nil {
		logger.Error(fmt.Sprintf("Error enviando respuesta: %v", err), "Message")
		return
	}

	time.AfterFunc(errorReplyDelay, func() {
		if err := s.ChannelMessageDelete(msg.ChannelID, msg.ID); err != nil {
			logger.Debug(fmt.Sprintf("Error eliminando respuesta: %v", err), "Message")
		}
	})
}

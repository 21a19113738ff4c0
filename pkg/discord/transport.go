package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// RESTSession is the part of *discordgo.Session the moderation transport uses
type RESTSession interface {
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
	GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error
	UserChannelCreate(recipientID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Transport bans, unbans and messages users through the Discord REST API
type Transport struct {
	Session RESTSession
}

// NewTransport creates a Transport over a session
func NewTransport(session RESTSession) *Transport {
	return &Transport{Session: session}
}

// UnbanMember lifts the ban of userID in guildID. A user that is not banned
// there counts as unbanned.
func (t *Transport) UnbanMember(ctx context.Context, guildID, userID string) error {
	err := t.Session.GuildBanDelete(guildID, userID, discordgo.WithContext(ctx))
	if err != nil && !isRESTCode(err, discordgo.ErrCodeUnknownBan) {
		return fmt.Errorf("unban %s in %s: %w", userID, guildID, err)
	}
	return nil
}

// BanMember bans userID from guildID without deleting messages
func (t *Transport) BanMember(ctx context.Context, guildID, userID, reason string) error {
	if err := t.Session.GuildBanCreateWithReason(guildID, userID, reason, 0, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("ban %s in %s: %w", userID, guildID, err)
	}
	return nil
}

// SendDirectMessage opens a DM channel with userID and sends text
func (t *Transport) SendDirectMessage(ctx context.Context, userID, text string) error {
	channel, err := t.Session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open dm with %s: %w", userID, err)
	}
	if _, err := t.Session.ChannelMessageSend(channel.ID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("send dm to %s: %w", userID, err)
	}
	return nil
}

func isRESTCode(err error, code int) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code == code
	}
	return false
}

package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(ctx *CommandContext) error { return nil }

// TestReplyEphemeralEmbedSignature is a compile-time check of the reply helpers
func TestReplyEphemeralEmbedSignature(t *testing.T) {
	type replyEmbedFunc func(*CommandContext, *discordgo.MessageEmbed) error

	var _ replyEmbedFunc = (*CommandContext).ReplyEphemeralEmbed
	var _ replyEmbedFunc = (*CommandContext).ReplyEmbed
}

func TestCommandCreation(t *testing.T) {
	cmd := NewCommand("unwarn", "Quita una advertencia", "mod", noop)

	require.NotNil(t, cmd)
	assert.Equal(t, "unwarn", cmd.Name)
	assert.Equal(t, "Quita una advertencia", cmd.Description)
	assert.Equal(t, "mod", cmd.Category)
	assert.NotNil(t, cmd.Run)
}

func TestCommandBuilders(t *testing.T) {
	option := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "usuario",
		Description: "Usuario",
		Required:    true,
	}

	cmd := NewCommand("unwarn", "Quita una advertencia", "mod", noop).
		WithOptions(option).
		WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers).
		RequiresDatabase()

	require.Len(t, cmd.Options, 1)
	assert.Equal(t, "usuario", cmd.Options[0].Name)
	assert.Equal(t, int64(discordgo.PermissionBanMembers), cmd.UserPermissions)
	assert.Equal(t, int64(discordgo.PermissionBanMembers), cmd.BotPermissions)
	assert.True(t, cmd.RequiresDB)
}

func TestToApplicationCommand(t *testing.T) {
	plain := NewCommand("warns", "Lista advertencias", "mod", noop).ToApplicationCommand()
	assert.Equal(t, "warns", plain.Name)
	assert.Nil(t, plain.DefaultMemberPermissions)

	guarded := NewCommand("unwarn", "Quita una advertencia", "mod", noop).
		WithUserPermissions(discordgo.PermissionBanMembers).
		ToApplicationCommand()
	require.NotNil(t, guarded.DefaultMemberPermissions)
	assert.Equal(t, int64(discordgo.PermissionBanMembers), *guarded.DefaultMemberPermissions)
}

func TestCommandName(t *testing.T) {
	tests := []struct {
		name string
		data discordgo.ApplicationCommandInteractionData
		want string
	}{
		{
			name: "plain",
			data: discordgo.ApplicationCommandInteractionData{Name: "ping"},
			want: "ping",
		},
		{
			name: "subcommand",
			data: discordgo.ApplicationCommandInteractionData{
				Name: "mod",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "unwarn", Type: discordgo.ApplicationCommandOptionSubCommand},
				},
			},
			want: "mod.unwarn",
		},
		{
			name: "subcommand group",
			data: discordgo.ApplicationCommandInteractionData{
				Name: "mod",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{
						Name: "warns",
						Type: discordgo.ApplicationCommandOptionSubCommandGroup,
						Options: []*discordgo.ApplicationCommandInteractionDataOption{
							{Name: "list", Type: discordgo.ApplicationCommandOptionSubCommand},
						},
					},
				},
			},
			want: "mod.warns.list",
		},
		{
			name: "plain options",
			data: discordgo.ApplicationCommandInteractionData{
				Name: "say",
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "text", Type: discordgo.ApplicationCommandOptionString},
				},
			},
			want: "say",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, commandName(tt.data))
		})
	}
}

func TestHasPermissions(t *testing.T) {
	assert.True(t, HasPermissions(0, 0))
	assert.True(t, HasPermissions(discordgo.PermissionAdministrator, discordgo.PermissionBanMembers))
	assert.True(t, HasPermissions(discordgo.PermissionBanMembers|discordgo.PermissionKickMembers, discordgo.PermissionBanMembers))
	assert.False(t, HasPermissions(discordgo.PermissionKickMembers, discordgo.PermissionBanMembers))
	assert.False(t, HasPermissions(discordgo.PermissionBanMembers, discordgo.PermissionBanMembers|discordgo.PermissionKickMembers))
}

func TestGroupPermissions(t *testing.T) {
	ban := NewCommand("unwarn", "", "mod", noop).WithUserPermissions(discordgo.PermissionBanMembers)
	ban2 := NewCommand("warn", "", "mod", noop).WithUserPermissions(discordgo.PermissionBanMembers)
	open := NewCommand("warns", "", "mod", noop)

	assert.Equal(t, int64(discordgo.PermissionBanMembers), groupPermissions([]*Command{ban, ban2}))
	assert.Zero(t, groupPermissions([]*Command{ban, open}))
	assert.Zero(t, groupPermissions(nil))
}

func TestCommandCollection(t *testing.T) {
	cc := NewCommandCollection()
	cc.Set("mod.unwarn", NewCommand("unwarn", "", "mod", noop))

	cmd, ok := cc.Get("mod.unwarn")
	assert.True(t, ok)
	assert.Equal(t, "unwarn", cmd.Name)
	assert.Equal(t, 1, cc.Size())

	_, ok = cc.Get("mod.warn")
	assert.False(t, ok)

	cc.Set("mod.warn", NewCommand("warn", "", "mod", noop))
	assert.Equal(t, []string{"mod.unwarn", "mod.warn"}, cc.Routes())
}

func TestCheckCommand(t *testing.T) {
	guarded := NewCommand("unwarn", "", "mod", noop).
		WithUserPermissions(discordgo.PermissionBanMembers).
		WithBotPermissions(discordgo.PermissionBanMembers).
		RequiresDatabase()
	ready := invocation{
		InGuild:     true,
		MemberPerms: discordgo.PermissionBanMembers,
		AppPerms:    discordgo.PermissionBanMembers,
		DBOnline:    true,
	}

	denial, err := checkCommand(guarded, ready)
	assert.NoError(t, err)
	assert.Empty(t, denial)

	dm := ready
	dm.InGuild = false
	_, err = checkCommand(guarded, dm)
	assert.ErrorIs(t, err, ErrMissingPermissions)

	member := ready
	member.MemberPerms = discordgo.PermissionSendMessages
	_, err = checkCommand(guarded, member)
	assert.ErrorIs(t, err, ErrMissingPermissions)

	bot := ready
	bot.AppPerms = discordgo.PermissionSendMessages
	_, err = checkCommand(guarded, bot)
	assert.ErrorIs(t, err, ErrCommandUnavailable)

	offline := ready
	offline.DBOnline = false
	denial, err = checkCommand(guarded, offline)
	assert.ErrorIs(t, err, ErrCommandUnavailable)
	assert.Contains(t, denial, "base de datos")

	open := NewCommand("status", "", "utils", noop)
	_, err = checkCommand(open, invocation{})
	assert.NoError(t, err)
}

func TestMessageResponse(t *testing.T) {
	plain := messageResponse("hola", nil, false)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, plain.Type)
	assert.Equal(t, "hola", plain.Data.Content)
	assert.Empty(t, plain.Data.Embeds)
	assert.Zero(t, plain.Data.Flags)

	embed := &discordgo.MessageEmbed{Title: "x"}
	private := messageResponse("", embed, true)
	require.Len(t, private.Data.Embeds, 1)
	assert.Equal(t, discordgo.MessageFlagsEphemeral, private.Data.Flags)
}

func TestReplyEditClearsTheOtherPart(t *testing.T) {
	text := replyEdit("listo", nil)
	require.NotNil(t, text.Embeds)
	assert.Empty(t, *text.Embeds)
	assert.Equal(t, "listo", *text.Content)

	withEmbed := replyEdit("", &discordgo.MessageEmbed{Title: "x"})
	assert.Len(t, *withEmbed.Embeds, 1)
	assert.Equal(t, "", *withEmbed.Content)
}

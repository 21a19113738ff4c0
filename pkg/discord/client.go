// Package discord provides the Discord bot client and related structures.
// It wraps discordgo with additional functionality for command and event handling.
package discord

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

// gatewayIntents covers slash commands, the !unwarn prefix command and the
// guild roster. Message content is privileged and must be enabled for the bot.
const gatewayIntents = discordgo.IntentGuilds |
	discordgo.IntentGuildMessages |
	discordgo.IntentMessageContent |
	discordgo.IntentGuildMembers |
	discordgo.IntentGuildModeration

var bridgeOnce sync.Once

// bridgeLogs routes discordgo's own logging into pkg/logger
func bridgeLogs() {
	bridgeOnce.Do(func() {
		discordgo.Logger = func(level int, _ int, format string, a ...interface{}) {
			msg := fmt.Sprintf(format, a...)
			switch level {
			case discordgo.LogError:
				logger.Error(msg, "DiscordGo")
			case discordgo.LogWarning:
				logger.Warn(msg, "DiscordGo")
			default:
				logger.Debug(msg, "DiscordGo")
			}
		}
	})
}

// ExtendedClient wraps discordgo.Session with the command and event registries
type ExtendedClient struct {
	Session        *discordgo.Session
	Commands       *CommandCollection
	CommandHandler *CommandHandler
	EventHandler   *EventHandler
	StartTime      time.Time

	ready atomic.Bool
}

var (
	client *ExtendedClient
	once   sync.Once
)

// Init initializes the global Discord client
func Init(token string) (*ExtendedClient, error) {
	var err error
	once.Do(func() {
		client, err = NewClient(token)
	})
	return client, err
}

// Get returns the global Discord client
func Get() *ExtendedClient {
	return client
}

// NewClient builds a client without connecting it
func NewClient(token string) (*ExtendedClient, error) {
	bridgeLogs()

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	session.Identify.Intents = gatewayIntents
	session.StateEnabled = true
	session.LogLevel = discordgo.LogWarning

	c := &ExtendedClient{
		Session:  session,
		Commands: NewCommandCollection(),
	}
	c.CommandHandler = NewCommandHandler(c)
	c.EventHandler = NewEventHandler(c)
	return c, nil
}

// Start reports the loaded commands and events, hooks the ready and
// interaction handlers and opens the gateway connection
func (c *ExtendedClient) Start() error {
	if err := c.CommandHandler.LoadCommands(); err != nil {
		return fmt.Errorf("loading commands: %w", err)
	}
	if err := c.EventHandler.LoadEvents(); err != nil {
		return fmt.Errorf("loading events: %w", err)
	}

	c.EventHandler.OnReady(c.onReady)
	c.Session.AddHandler(c.handleInteraction)

	c.StartTime = time.Now()
	return c.Session.Open()
}

// onReady marks the client ready and publishes the slash commands. Ready
// fires again after a full reconnect; registering twice is harmless.
func (c *ExtendedClient) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	c.ready.Store(true)
	logger.Success("Bot conectado como: "+r.User.Username, "Client")
	c.CommandHandler.RegisterCommands()
}

// commandName builds the registry key of an interaction: "name",
// "name.sub" or "name.group.sub"
func commandName(data discordgo.ApplicationCommandInteractionData) string {
	if len(data.Options) == 0 {
		return data.Name
	}

	opt := data.Options[0]
	switch {
	case opt.Type == discordgo.ApplicationCommandOptionSubCommand:
		return data.Name + "." + opt.Name
	case opt.Type == discordgo.ApplicationCommandOptionSubCommandGroup && len(opt.Options) > 0:
		return data.Name + "." + opt.Name + "." + opt.Options[0].Name
	}
	return data.Name
}

// handleInteraction routes slash commands and autocomplete requests
func (c *ExtendedClient) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	defer apperrors.RecoverMiddleware()()

	autocomplete := i.Type == discordgo.InteractionApplicationCommandAutocomplete
	if i.Type != discordgo.InteractionApplicationCommand && !autocomplete {
		return
	}

	name := commandName(i.ApplicationCommandData())
	cmd, ok := c.Commands.Get(name)
	if !ok {
		if !autocomplete {
			logger.Warn("Comando no encontrado: "+name, "Client")
		}
		return
	}

	ctx := &CommandContext{Session: s, Interaction: i, Client: c}

	if autocomplete {
		if cmd.AutoComplete != nil {
			cmd.AutoComplete(ctx)
		}
		return
	}

	if c.PermissionMiddleware(ctx, cmd) != nil {
		return
	}
	if err := cmd.Run(ctx); err != nil {
		logger.Error(fmt.Sprintf("Error ejecutando /%s: %v", name, err), "Client")
	}
}

// Stop removes the event handlers and closes the gateway
func (c *ExtendedClient) Stop() error {
	c.ready.Store(false)

	if c.EventHandler != nil {
		c.EventHandler.Clear()
	}
	if c.Session == nil {
		return nil
	}
	return c.Session.Close()
}

// IsReady reports whether Ready has been received since the last Stop
func (c *ExtendedClient) IsReady() bool {
	return c.ready.Load()
}

// GuildCount returns the number of guilds in the state cache
func (c *ExtendedClient) GuildCount() int {
	if c.Session == nil || c.Session.State == nil {
		return 0
	}
	c.Session.State.RLock()
	defer c.Session.State.RUnlock()
	return len(c.Session.State.Guilds)
}

// Package main provides a utility to sync Discord slash commands.
// It compares the commands defined in code with the ones registered in
// Discord and removes the stale ones.
//
// Usage:
//
//	go run ./cmd/sync-commands [options]
//
// Options:
//
//	-list           List registered commands and what a sync would change
//	-dry-run        Show the sync plan without applying it
//	-clean          Remove all commands without registering new ones
//	-guild <id>     Target a specific guild instead of global commands
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/PancyStudios/PancyGuardGo/internal/commands"
	"github.com/PancyStudios/PancyGuardGo/pkg/config"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/bwmarrin/discordgo"
)

const logPrefix = "SyncCommands"

type options struct {
	list    bool
	dryRun  bool
	clean   bool
	guildID string
}

func main() {
	var opts options
	flag.BoolVar(&opts.list, "list", false, "List registered commands and the pending changes")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "Show the sync plan without applying it")
	flag.BoolVar(&opts.clean, "clean", false, "Remove all commands without registering new ones")
	flag.StringVar(&opts.guildID, "guild", "", "Target a specific guild (leave empty for global)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	defer log.Close()

	if err := run(cfg, opts); err != nil {
		logger.Critical(err.Error(), logPrefix)
		log.Close()
		os.Exit(1)
	}
	logger.Success("Operación completada exitosamente", logPrefix)
}

func run(cfg *config.Config, opts options) error {
	client, err := discord.NewClient(cfg.BotToken)
	if err != nil {
		return fmt.Errorf("creating Discord client: %w", err)
	}
	if err := client.Session.Open(); err != nil {
		return fmt.Errorf("connecting to Discord: %w", err)
	}
	defer client.Session.Close()

	logger.Success("Conectado a Discord", logPrefix)

	// Build the command set defined in code
	commands.RegisterAll(client)

	ch := client.CommandHandler
	if opts.clean {
		if opts.guildID != "" {
			return ch.UnregisterGuildCommands(opts.guildID)
		}
		return ch.UnregisterCommands()
	}

	var registered []*discordgo.ApplicationCommand
	if opts.guildID != "" {
		registered, err = ch.ListGuildCommands(opts.guildID)
	} else {
		registered, err = ch.ListGlobalCommands()
	}
	if err != nil {
		return fmt.Errorf("listing commands: %w", err)
	}

	if opts.list {
		for i, cmd := range registered {
			logger.Info(fmt.Sprintf("  %d. /%s - %s (ID: %s)", i+1, cmd.Name, cmd.Description, cmd.ID), logPrefix)
		}
	}

	// Commands only live globally; in a guild everything registered is stale
	var defined []string
	if opts.guildID == "" {
		defined = client.CommandHandler.GlobalCommandNames()
	}
	plan := planSync(defined, registered)
	logPlan(plan)

	if opts.list || opts.dryRun {
		return nil
	}

	if opts.guildID != "" {
		return ch.UnregisterGuildCommands(opts.guildID)
	}
	return ch.SyncCommands()
}

// syncPlan lists command names by what a sync does to them
type syncPlan struct {
	Create []string
	Update []string
	Delete []string
}

// planSync compares the command names defined in code with the commands
// registered in Discord. Every defined command that already exists is
// overwritten, so it is reported as an update.
func planSync(defined []string, registered []*discordgo.ApplicationCommand) syncPlan {
	existing := make(map[string]bool, len(registered))
	for _, cmd := range registered {
		existing[cmd.Name] = true
	}

	var plan syncPlan
	wanted := make(map[string]bool, len(defined))
	for _, name := range defined {
		wanted[name] = true
		if existing[name] {
			plan.Update = append(plan.Update, name)
		} else {
			plan.Create = append(plan.Create, name)
		}
	}
	for name := range existing {
		if !wanted[name] {
			plan.Delete = append(plan.Delete, name)
		}
	}

	sort.Strings(plan.Create)
	sort.Strings(plan.Update)
	sort.Strings(plan.Delete)
	return plan
}

func logPlan(p syncPlan) {
	logger.Info(fmt.Sprintf("🔄 Plan: %d nuevos, %d actualizados, %d obsoletos", len(p.Create), len(p.Update), len(p.Delete)), logPrefix)
	for _, name := range p.Create {
		logger.Info("  + /"+name, logPrefix)
	}
	for _, name := range p.Delete {
		logger.Warn("  - /"+name, logPrefix)
	}
}

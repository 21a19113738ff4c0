// Package main is the entry point for the PancyGuard Go application.
// It initializes all systems and starts the Discord bot.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/PancyStudios/PancyGuardGo/internal/commands"
	"github.com/PancyStudios/PancyGuardGo/internal/commands/mod"
	"github.com/PancyStudios/PancyGuardGo/internal/events"
	"github.com/PancyStudios/PancyGuardGo/pkg/config"
	"github.com/PancyStudios/PancyGuardGo/pkg/database"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/mqtt"
	"github.com/PancyStudios/PancyGuardGo/pkg/warns"
	"github.com/PancyStudios/PancyGuardGo/pkg/web"
)

const groupRefreshInterval = 5 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.Init(cfg.ErrorWebhook, cfg.LogsWebhook)
	log.SetDebug(!cfg.IsProd())
	defer log.Close()

	logger.System("Iniciando PancyGuard Go...", "Main")
	logger.Info(fmt.Sprintf("Directorio de trabajo: %s", getCurrentDir()), "Main")

	// Initialize error handler
	var discordClient *discord.ExtendedClient
	errors.Init(cfg.ErrorWebhook, func() {
		if discordClient != nil {
			if err := discordClient.Stop(); err != nil {
				logger.Error(fmt.Sprintf("Error cerrando sesión de Discord: %v", err), "Main")
			}
		}
	})

	// Initialize database. On failure it keeps reconnecting in the background
	// and queues writes meanwhile.
	db, err := database.Init(cfg.MongoDBURL, cfg.DBName)
	if err != nil {
		logger.Error(fmt.Sprintf("Error connecting to database: %v", err), "Main")
	}
	defer func() {
		if err := db.Disconnect(); err != nil {
			logger.Error(fmt.Sprintf("Error desconectando la base de datos: %v", err), "Main")
		}
	}()

	users := database.NewUserStore(db)
	groups := database.NewGroupStore(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := groups.Refresh(ctx); err != nil {
		logger.Warn(fmt.Sprintf("Error cargando grupos: %v", err), "Main")
	}
	cancel()
	groups.StartAutoRefresh(groupRefreshInterval)
	defer groups.Stop()

	// Initialize Discord client
	discordClient, err = discord.Init(cfg.BotToken)
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creating Discord client: %v", err), "Main")
		os.Exit(1)
	}

	// Moderation core
	svc := warns.NewService(users, groups, discord.NewTransport(discordClient.Session), warns.Options{
		Threshold: cfg.WarnsToBan,
		Expiry: warns.ExpiryPolicy{
			TTL:           cfg.WarnTTL(),
			UndatedActive: cfg.UndatedWarnsActive,
		},
	})
	defer svc.Notifier.Close()

	// Initialize MQTT
	mqttClientID := "pancyguard"
	if !cfg.IsProd() {
		mqttClientID = "pancyguard_canary"
	}

	mqttClient := mqtt.Init(
		cfg.MQTTHost,
		cfg.MQTTPort,
		cfg.MQTTUser,
		cfg.MQTTPassword,
		mqttClientID,
	)
	defer mqttClient.Destroy()
	mqttClient.RegisterModeration(svc)
	logger.Info(fmt.Sprintf("Rutas MQTT: %s", strings.Join(mqttClient.Routes(), ", ")), "Main")

	mod.SetService(svc, mqttClient)

	// Register commands and events
	commands.RegisterAll(discordClient)
	events.RegisterAll(discordClient, groups)

	// Initialize web server
	webServer, err := web.Init(web.Options{
		WebhookURL:   cfg.LogsWebServerHook,
		AllowedHosts: cfg.AllowedHosts,
		APIKey:       cfg.APIKey,
		RateLimit:    web.DefaultRateLimit(),
	})
	if err != nil {
		logger.Critical(fmt.Sprintf("Error creando servidor web: %v", err), "Main")
		os.Exit(1)
	}
	web.SetupAPIRoutes(webServer, svc, mqttClient)
	webServer.StartAsync(cfg.Port)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := webServer.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("Error cerrando el servidor web: %v", err), "Main")
		}
	}()

	// Start the bot
	if err := discordClient.Start(); err != nil {
		logger.Critical(fmt.Sprintf("Error starting Discord client: %v", err), "Main")
		os.Exit(1)
	}
	defer func() {
		if err := discordClient.Stop(); err != nil {
			logger.Error(fmt.Sprintf("Error cerrando sesión de Discord: %v", err), "Main")
		}
	}()

	logger.Success(fmt.Sprintf("PancyGuard Go iniciado correctamente! (ban con %d advertencias)", cfg.WarnsToBan), "Main")

	// Wait for interrupt signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	logger.System("Apagando PancyGuard Go...", "Main")
}

// getCurrentDir returns the current working directory
func getCurrentDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "unknown"
	}
	return dir
}

package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/database"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/mqtt"
)

// createStatusCommand creates the /utils status subcommand
func createStatusCommand() *discord.Command {
	return discord.NewCommand(
		"status",
		"Latencia y estado de las conexiones del bot",
		"utils",
		statusHandler,
	)
}

// statusInfo is what /utils status reports
type statusInfo struct {
	Gateway       time.Duration
	DBStatus      string
	DBOnline      bool
	DBLatency     time.Duration
	PendingWrites int
	MQTTOnline    bool
	Groups        int
}

func statusHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		info := statusInfo{
			Gateway:    ctx.Client.Session.HeartbeatLatency(),
			MQTTOnline: mqtt.Get().IsConnected(),
			Groups:     ctx.Client.GuildCount(),
		}

		db := database.Get()
		info.DBStatus, info.DBOnline = db.GetStatus()
		if info.DBOnline {
			if latency, err := db.Ping(); err == nil {
				info.DBLatency = latency
			}
		} else if db != nil {
			info.PendingWrites = db.PendingWrites()
		}

		_ = ctx.Reply(statusReport(info))
	}()
	return nil
}

// statusReport renders the /utils status reply
func statusReport(info statusInfo) string {
	var b strings.Builder
	b.WriteString("📊 **Estado del Bot**\n")
	fmt.Fprintf(&b, "• 🏓 Gateway: %dms\n", info.Gateway.Milliseconds())

	fmt.Fprintf(&b, "• Base de datos: %s", info.DBStatus)
	if info.DBOnline {
		fmt.Fprintf(&b, " (%dms)", info.DBLatency.Milliseconds())
	}
	b.WriteString("\n")
	if info.PendingWrites > 0 {
		fmt.Fprintf(&b, "• Escrituras pendientes: %d\n", info.PendingWrites)
	}

	mqttStatus := "🔴 Desconectado"
	if info.MQTTOnline {
		mqttStatus = "🟢 Conectado"
	}
	fmt.Fprintf(&b, "• MQTT: %s\n", mqttStatus)
	fmt.Fprintf(&b, "• Grupos: %d", info.Groups)

	return b.String()
}

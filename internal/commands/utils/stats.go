package utils

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/config"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/metrics"
	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
)

// createStatsCommand creates the /utils stats subcommand
func createStatsCommand() *discord.Command {
	return discord.NewCommand(
		"stats",
		"Estadísticas de moderación desde el último arranque",
		"utils",
		statsHandler,
	)
}

// statsInfo is what /utils stats reports
type statsInfo struct {
	Version    string
	Uptime     time.Duration
	Goroutines int
	MemoryMB   float64
	Counts     map[string]float64
}

func statsHandler(ctx *discord.CommandContext) error {
	go func() {
		defer errors.RecoverMiddleware()()

		counts, err := metrics.Counts(prometheus.DefaultGatherer)
		if err != nil {
			logger.Warn(fmt.Sprintf("Error leyendo métricas: %v", err), "CMD-Stats")
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		_ = ctx.ReplyEmbed(statsEmbed(statsInfo{
			Version:    config.Version,
			Uptime:     time.Since(ctx.Client.StartTime),
			Goroutines: runtime.NumGoroutine(),
			MemoryMB:   float64(m.Alloc) / 1024 / 1024,
			Counts:     counts,
		}))
	}()
	return nil
}

// statsEmbed renders the counters collected by the metrics package
func statsEmbed(info statsInfo) *discordgo.MessageEmbed {
	c := info.Counts
	field := func(name, value string) *discordgo.MessageEmbedField {
		return &discordgo.MessageEmbedField{Name: name, Value: value, Inline: true}
	}

	return &discordgo.MessageEmbed{
		Title: "📊 Estadísticas de moderación",
		Color: 0x5865F2,
		Fields: []*discordgo.MessageEmbedField{
			field("⚠️ Advertencias", fmt.Sprintf("%.0f emitidas", c["warns_issued_total"])),
			field("❎ Perdonadas", fmt.Sprintf("%.0f (%.0f sin advertencias)", c["unwarns_total:removed"], c["unwarns_total:noop"])),
			field("🚫 Baneos", fmt.Sprintf("%.0f ok / %.0f fallidos", c["group_requests_total:ban:ok"], c["group_requests_total:ban:failed"])),
			field("✅ Desbaneos", fmt.Sprintf("%.0f ok / %.0f fallidos", c["group_requests_total:unban:ok"], c["group_requests_total:unban:failed"])),
			field("✉️ Avisos por DM", fmt.Sprintf("%.0f enviados / %.0f perdidos", c["notifications_total:sent"], c["notifications_total:dropped"])),
			field("🤖 Versión", info.Version),
			field("⏱ Uptime", formatDuration(info.Uptime)),
			field("🖥 Recursos", fmt.Sprintf("%.2f MB / %d goroutines", info.MemoryMB, info.Goroutines)),
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: "💫 - Developed by PancyStudios"},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// formatDuration formats a time.Duration into a human-readable string
func formatDuration(dur time.Duration) string {
	units := []struct {
		size time.Duration
		name string
	}{
		{24 * time.Hour, "días"},
		{time.Hour, "horas"},
		{time.Minute, "minutos"},
		{time.Second, "segundos"},
	}

	var parts []string
	for _, u := range units {
		if n := dur / u.size; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, u.name))
			dur -= n * u.size
		}
	}

	if len(parts) == 0 {
		return "0 segundos"
	}
	return strings.Join(parts, ", ")
}

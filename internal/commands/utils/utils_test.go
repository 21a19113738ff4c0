package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0 segundos", formatDuration(0))
	assert.Equal(t, "5 segundos", formatDuration(5*time.Second))
	assert.Equal(t, "1 días, 2 horas, 3 minutos", formatDuration(26*time.Hour+3*time.Minute))
	assert.Equal(t, "0 segundos", formatDuration(300*time.Millisecond))
}

func TestHelpListsModerationCommands(t *testing.T) {
	assert.Contains(t, helpText, "/mod unwarn")
	assert.Contains(t, helpText, "!unwarn")
	assert.NotContains(t, helpText, "/play")
}

func TestStatusReport(t *testing.T) {
	online := statusReport(statusInfo{
		Gateway:    42 * time.Millisecond,
		DBStatus:   "🟢 | En linea",
		DBOnline:   true,
		DBLatency:  3 * time.Millisecond,
		MQTTOnline: true,
		Groups:     7,
	})
	assert.Contains(t, online, "Gateway: 42ms")
	assert.Contains(t, online, "En linea (3ms)")
	assert.Contains(t, online, "MQTT: 🟢 Conectado")
	assert.Contains(t, online, "Grupos: 7")
	assert.NotContains(t, online, "pendientes")

	offline := statusReport(statusInfo{DBStatus: "🔴 | Desconectado", PendingWrites: 4})
	assert.Contains(t, offline, "Escrituras pendientes: 4")
	assert.Contains(t, offline, "MQTT: 🔴 Desconectado")
}

func TestStatsEmbed(t *testing.T) {
	embed := statsEmbed(statsInfo{
		Version: "1.0.0",
		Uptime:  time.Hour,
		Counts: map[string]float64{
			"warns_issued_total":                5,
			"unwarns_total:removed":             2,
			"unwarns_total:noop":                1,
			"group_requests_total:unban:failed": 3,
		},
	})

	values := make(map[string]string)
	for _, f := range embed.Fields {
		values[f.Name] = f.Value
	}
	assert.Equal(t, "5 emitidas", values["⚠️ Advertencias"])
	assert.Equal(t, "2 (1 sin advertencias)", values["❎ Perdonadas"])
	assert.Equal(t, "0 ok / 3 fallidos", values["✅ Desbaneos"])
	assert.Equal(t, "1 horas", values["⏱ Uptime"])
}

func TestStatsEmbedWithoutCounts(t *testing.T) {
	embed := statsEmbed(statsInfo{Version: "dev"})
	assert.Equal(t, "0 emitidas", embed.Fields[0].Value)
}

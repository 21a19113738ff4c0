package main

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestPlanSync(t *testing.T) {
	registered := []*discordgo.ApplicationCommand{
		{Name: "mod"},
		{Name: "play"},
		{Name: "premium"},
	}

	plan := planSync([]string{"utils", "mod"}, registered)

	assert.Equal(t, []string{"utils"}, plan.Create)
	assert.Equal(t, []string{"mod"}, plan.Update)
	assert.Equal(t, []string{"play", "premium"}, plan.Delete)
}

func TestPlanSyncUpToDate(t *testing.T) {
	plan := planSync([]string{"mod"}, []*discordgo.ApplicationCommand{{Name: "mod"}})

	assert.Empty(t, plan.Create)
	assert.Empty(t, plan.Delete)
	assert.Equal(t, []string{"mod"}, plan.Update)
}

func TestPlanSyncGuildCleanup(t *testing.T) {
	plan := planSync(nil, []*discordgo.ApplicationCommand{{Name: "mod"}})

	assert.Empty(t, plan.Create)
	assert.Equal(t, []string{"mod"}, plan.Delete)
}

package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	r := NewRegistry()
	r.RegisterCommand("/start", Command{Handler: noop, Description: "Main menu"})
	r.RegisterCommand("/dump_profiles", Command{Handler: noop, Description: "Dump profiles", AdminOnly: true})
	r.RegisterCommand("help", Command{Handler: noop, Description: "no slash"})
	r.RegisterCommand("/start", Command{Handler: noop, Description: "duplicate"})

	r.RegisterCommand("/debug", Command{Handler: noop, Description: "Debug", Hidden: true})

	assert.Len(t, r.Commands(), 3)
	assert.Equal(t, []tele.Command{{Text: "start", Description: "Main menu"}}, r.ListCommands(true))
	assert.Len(t, r.ListCommands(false), 3)
	assert.Equal(t, []tele.Command{
		{Text: "dump_profiles", Description: "Dump profiles"},
		{Text: "start", Description: "Main menu"},
	}, r.AdminCommands())

	key, cmd, ok := r.LookupCommand("start")
	require.True(t, ok)
	assert.Equal(t, "/start", key)
	assert.Equal(t, "Main menu", cmd.Description)

	r.RegisterCommand("/profile", Command{Handler: noop, Description: "Profile", Aliases: []string{"me"}})
	key, _, ok = r.LookupCommand("/me")
	require.True(t, ok)
	assert.Equal(t, "/profile", key)

	_, _, ok = r.LookupCommand("/unknown")
	assert.False(t, ok)
}

func TestRegistryCallbacks(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.RegisterCallbacks([]string{"menu", "back"}, noop))
	assert.Error(t, r.RegisterCallbacks([]string{"back", "search"}, noop))
	assert.Error(t, r.RegisterCallback("", noop))

	assert.Equal(t, []string{"back", "menu", "search"}, r.ListCallbacks())
	_, ok := r.GetCallback("search")
	assert.True(t, ok)
	assert.NotNil(t, r.CallbackNotFound())
}

package router

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tg "github.com/m3rciful/partyfinder/core/telegram"

	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	user  *tele.User
	text  string
	cb    *tele.Callback
	store map[string]any
}

func newFakeContext(userID int64, text string) *fakeContext {
	return &fakeContext{user: &tele.User{ID: userID}, text: text, store: map[string]any{}}
}

func (f *fakeContext) Sender() *tele.User       { return f.user }
func (f *fakeContext) Chat() *tele.Chat         { return &tele.Chat{ID: f.user.ID} }
func (f *fakeContext) Update() tele.Update      { return tele.Update{ID: 7, Callback: f.cb} }
func (f *fakeContext) Text() string             { return f.text }
func (f *fakeContext) Callback() *tele.Callback { return f.cb }
func (f *fakeContext) Get(key string) any       { return f.store[key] }
func (f *fakeContext) Set(key string, v any)    { f.store[key] = v }

type fakeFSM struct {
	active  bool
	handled int
}

func (f *fakeFSM) InProgress(int64) bool { return f.active }

func (f *fakeFSM) ManagerHandler(tele.Context) error {
	f.handled++
	return nil
}

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string  { return "store upsert" }

func TestDeriveErrorCode(t *testing.T) {
	assert.Empty(t, deriveErrorCode(nil))
	assert.Equal(t, "STORE_UPSERT", deriveErrorCode(fmt.Errorf("wrap: %w", codedErr{})))
	assert.Equal(t, "ERRORSTRING", deriveErrorCode(errors.New("plain")))
}

func TestNormalizeHandlerName(t *testing.T) {
	assert.Equal(t, "unknown", normalizeHandlerName("  "))
	assert.Equal(t, "dump_profiles", normalizeHandlerName("/dump_profiles"))
	assert.Equal(t, "search_mode", normalizeHandlerName("Search Mode"))
}

func textHandler(t *testing.T, fsm FSM, reg *tg.Registry) tele.HandlerFunc {
	t.Helper()
	routes := TextRoutes(fsm, reg, TextOptions{})
	require.Len(t, routes, 2)
	require.Equal(t, tele.OnText, routes[0].Endpoint)
	return routes[0].Handler
}

func TestTextRoutesPreferActiveDialog(t *testing.T) {
	fsm := &fakeFSM{active: true}
	reg := tg.NewRegistry()
	var fallback int
	reg.SetTextFallback(func(tele.Context) error { fallback++; return nil })

	h := textHandler(t, fsm, reg)
	require.NoError(t, h(newFakeContext(1, "3000")))
	assert.Equal(t, 1, fsm.handled)
	assert.Zero(t, fallback)

	fsm.active = false
	require.NoError(t, h(newFakeContext(1, "hello")))
	assert.Equal(t, 1, fsm.handled)
	assert.Equal(t, 1, fallback)
}

func TestTextRoutesResolveCommandAliases(t *testing.T) {
	reg := tg.NewRegistry()
	var started int
	reg.RegisterCommand("/start", tg.Command{
		Description: "Main menu",
		Handler:     func(tele.Context) error { started++; return nil },
		Aliases:     []string{"menu"},
	})

	h := textHandler(t, &fakeFSM{}, reg)
	require.NoError(t, h(newFakeContext(1, "/menu")))
	assert.Equal(t, 1, started)
}

func TestTextRoutesSkipAdminCommands(t *testing.T) {
	reg := tg.NewRegistry()
	var dumped, fallback int
	reg.RegisterCommand("/dump_profiles", tg.Command{
		Description: "Export all profiles",
		Handler:     func(tele.Context) error { dumped++; return nil },
		AdminOnly:   true,
	})
	reg.SetTextFallback(func(tele.Context) error { fallback++; return nil })

	h := textHandler(t, &fakeFSM{}, reg)
	require.NoError(t, h(newFakeContext(1, "dump_profiles")))
	assert.Zero(t, dumped)
	assert.Equal(t, 1, fallback)
}

func TestCallbackRouteUsesRegistry(t *testing.T) {
	reg := tg.NewRegistry()
	var got string
	require.NoError(t, reg.RegisterCallback("search_mode", func(c tele.Context) error {
		got = c.Callback().Data
		return nil
	}))
	var missing int
	reg.SetCallbackNotFound(func(tele.Context) error { missing++; return nil })

	h := CallbackRoute(reg, CallbackOptions{}).Handler

	c := newFakeContext(1, "")
	c.cb = &tele.Callback{Data: "\fsearch_mode|Turbo"}
	require.NoError(t, h(c))
	assert.Equal(t, "\fsearch_mode|Turbo", got)

	c = newFakeContext(1, "")
	c.cb = &tele.Callback{Data: "\fgone|1"}
	require.NoError(t, h(c))
	assert.Equal(t, 1, missing)
}

func TestCommandRoutesSortedAndGuarded(t *testing.T) {
	reg := tg.NewRegistry()
	var ran int
	h := func(tele.Context) error { ran++; return nil }
	reg.RegisterCommand("/start", tg.Command{Description: "Main menu", Handler: h})
	reg.RegisterCommand("/dump_profiles", tg.Command{Description: "Export", Handler: h, AdminOnly: true})

	var refused int
	routes := CommandRoutes(reg, CommandRouteOptions{
		AdminID:       42,
		OnAdminReject: func(tele.Context) error { refused++; return nil },
	})
	require.Len(t, routes, 2)
	assert.Equal(t, "/dump_profiles", routes[0].Endpoint)
	assert.Equal(t, "/start", routes[1].Endpoint)

	require.NoError(t, routes[0].Handler(newFakeContext(7, "/dump_profiles")))
	assert.Equal(t, 1, refused)
	assert.Zero(t, ran)

	require.NoError(t, routes[0].Handler(newFakeContext(42, "/dump_profiles")))
	assert.Equal(t, 1, ran)
}

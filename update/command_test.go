package update_test

import (
	"testing"

	"github.com/marcelsud/telegram-ragbot/update"
	"github.com/stretchr/testify/assert"
)

func msg(text, chatType string) update.InboundUpdate {
	return update.InboundUpdate{UpdateID: 1, Kind: update.KindMessage, ChatID: 1, ChatType: chatType, Text: text}
}

func TestCommand(t *testing.T) {
	for _, c := range []update.Command{update.Start, update.Help, update.Status, update.Stop} {
		assert.Equal(t, c, update.NewCommand(c.String()))
		assert.NoError(t, c.Validate())
	}
	assert.Error(t, update.NewCommand("restart").Validate())
	assert.Equal(t, update.Help, update.NewCommand("HELP"))
}

func TestRouter_Route(t *testing.T) {
	r := update.NewRouter("@TestBot")

	t.Run("commands", func(t *testing.T) {
		cases := []struct {
			text string
			want update.Route
		}{
			{"/start", update.Route{Kind: update.RouteCommand, Command: update.Start}},
			{"/help", update.Route{Kind: update.RouteCommand, Command: update.Help}},
			{"/status now", update.Route{Kind: update.RouteCommand, Command: update.Status, Args: "now"}},
			{"/stop", update.Route{Kind: update.RouteCommand, Command: update.Stop}},
			{"/start@testbot", update.Route{Kind: update.RouteCommand, Command: update.Start}},
			{"  /help@TestBot  extra ", update.Route{Kind: update.RouteCommand, Command: update.Help, Args: "extra"}},
			{"/start@otherbot", update.Route{Kind: update.RouteIgnore}},
			{"/start\nhello", update.Route{Kind: update.RouteCommand, Command: update.Start, Args: "hello"}},
			{"/help\targ", update.Route{Kind: update.RouteCommand, Command: update.Help, Args: "arg"}},
			{"/status@testbot\n  two words ", update.Route{Kind: update.RouteCommand, Command: update.Status, Args: "two words"}},
		}
		for _, c := range cases {
			assert.Equal(t, c.want, r.Route(msg(c.text, "private")), c.text)
		}
	})

	t.Run("unknown command is free-form text", func(t *testing.T) {
		got := r.Route(msg("/weather tomorrow", "private"))
		assert.Equal(t, update.RouteFreeForm, got.Kind)
		assert.Equal(t, "/weather tomorrow", got.Text)
	})

	t.Run("private free-form", func(t *testing.T) {
		got := r.Route(msg("what are your skills?", "private"))
		assert.Equal(t, update.Route{Kind: update.RouteFreeForm, Text: "what are your skills?"}, got)
	})

	t.Run("group text needs a mention", func(t *testing.T) {
		assert.Equal(t, update.RouteIgnore, r.Route(msg("hello everyone", "group")).Kind)
		assert.Equal(t, update.RouteIgnore, r.Route(msg("@testbotter hi", "group")).Kind)
		assert.Equal(t, update.RouteIgnore, r.Route(msg("@testbot", "supergroup")).Kind)

		got := r.Route(msg("hey @TESTBOT what do you do?", "supergroup"))
		assert.Equal(t, update.Route{Kind: update.RouteFreeForm, Text: "hey  what do you do?"}, got)
	})

	t.Run("group commands do not need a mention", func(t *testing.T) {
		assert.Equal(t, update.RouteCommand, r.Route(msg("/help", "group")).Kind)
	})

	t.Run("ignored kinds", func(t *testing.T) {
		u := msg("hi", "private")
		u.Kind = update.KindEditedMessage
		assert.Equal(t, update.RouteIgnore, r.Route(u).Kind)

		u.Kind = update.KindCallbackQuery
		assert.Equal(t, update.RouteIgnore, r.Route(u).Kind)

		assert.Equal(t, update.RouteIgnore, r.Route(msg("   ", "private")).Kind)
	})
}

package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name         string
		cb           *tele.Callback
		key, payload string
	}{
		{"nil", nil, "", ""},
		{"prefixed with payload", &tele.Callback{Data: "\fsearch_mode|All Pick"}, "search_mode", "All Pick"},
		{"prefixed without payload", &tele.Callback{Data: "\fmenu"}, "menu", ""},
		{"payload keeps separators", &tele.Callback{Data: "\fdelta|1|2"}, "delta", "1|2"},
		{"unprefixed", &tele.Callback{Data: "back|"}, "back", ""},
		{"already routed", &tele.Callback{Unique: "pick_pos", Data: "3"}, "pick_pos", "3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, payload := ParseCallbackData(tc.cb)
			assert.Equal(t, tc.key, key)
			assert.Equal(t, tc.payload, payload)
		})
	}
}

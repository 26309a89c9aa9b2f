package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineButtonsRows(t *testing.T) {
	markup := InlineButtonsRows(
		[]InlineBtn{{Text: "Ranked", Unique: "search_mode", Data: "Ranked"}, {Text: "Back", Unique: "back"}},
		nil,
		[]InlineBtn{{Text: "Message @anna", URL: "https://t.me/anna"}},
	)

	require.Len(t, markup.InlineKeyboard, 2)
	require.Len(t, markup.InlineKeyboard[0], 2)
	assert.Equal(t, "Ranked", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "search_mode", markup.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "back", markup.InlineKeyboard[0][1].Unique)
	assert.Equal(t, "https://t.me/anna", markup.InlineKeyboard[1][0].URL)
	assert.Empty(t, markup.InlineKeyboard[1][0].Unique)
}

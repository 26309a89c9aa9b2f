package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes one inline button: a callback when Unique is set,
// a link when URL is set.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
	URL    string
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
// Empty rows are skipped.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, 0, len(row))
		for _, btn := range row {
			var b tele.Btn
			if btn.URL != "" {
				b = markup.URL(btn.Text, btn.URL)
			} else {
				b = markup.Data(btn.Text, btn.Unique, btn.Data)
			}
			r = append(r, *b.Inline())
		}
		inline = append(inline, r)
	}
	markup.InlineKeyboard = inline
	return markup
}

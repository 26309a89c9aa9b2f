// Package bot adapts the dialog engine and profile export to Telegram.
package bot

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/partyfinder/core/logger"
	tg "github.com/m3rciful/partyfinder/core/telegram"
	"github.com/m3rciful/partyfinder/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/partyfinder/core/telegram/helpers"
	"github.com/m3rciful/partyfinder/core/telegram/keyboard"
	"github.com/m3rciful/partyfinder/internal/dialog"
	"github.com/m3rciful/partyfinder/internal/export"
	"github.com/m3rciful/partyfinder/internal/profile"

	tele "gopkg.in/telebot.v4"
)

const (
	textRefused      = "⛔ This command is available to the administrator only."
	textExportFailed = "⚠️ Could not read the profile base. Please try again later."
)

// Bot handles updates for one Telegram bot.
type Bot struct {
	engine   *dialog.Engine
	exporter *export.Exporter
}

// New returns a Bot.
func New(engine *dialog.Engine, exporter *export.Exporter) *Bot {
	return &Bot{engine: engine, exporter: exporter}
}

// Register binds commands, callbacks, and fallbacks to reg.
func (b *Bot) Register(reg *tg.Registry) error {
	reg.RegisterCommand("/start", tg.Command{
		Handler:     b.start,
		Description: "Main menu",
		Aliases:     []string{"menu"},
	})
	reg.RegisterCommand("/dump_profiles", tg.Command{
		Handler:     b.dumpProfiles,
		Description: "Export all profiles",
		AdminOnly:   true,
	})
	reg.SetTextFallback(b.ManagerHandler)
	reg.SetCallbackNotFound(b.unknownCallback)
	return reg.RegisterCallbacks(dialog.Tokens, b.onCallback)
}

// InProgress reports whether the user is in a step that expects text.
func (b *Bot) InProgress(userID int64) bool {
	return b.engine.InProgress(userID)
}

// ManagerHandler feeds a text message to the dialog engine.
func (b *Bot) ManagerHandler(c tele.Context) error {
	u := c.Sender()
	if u == nil {
		return nil
	}
	reply, err := b.engine.Handle(tghelpers.BuildContext(c), dialog.Text(u.ID, u.Username, c.Text()))
	return errors.Join(err, b.render(c, reply))
}

func (b *Bot) onCallback(c tele.Context) error {
	u := c.Sender()
	if u == nil {
		return c.Respond()
	}
	key, payload := callbacks.ParseCallbackData(c.Callback())
	reply, err := b.engine.Handle(tghelpers.BuildContext(c), dialog.Callback(u.ID, u.Username, key, payload))
	return errors.Join(err, b.render(c, reply))
}

func (b *Bot) unknownCallback(c tele.Context) error {
	return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
}

func (b *Bot) start(c tele.Context) error {
	u := c.Sender()
	if u == nil {
		return nil
	}
	return b.render(c, b.engine.Start(u.ID))
}

// Refuse answers callers that may not run admin-only commands.
func (b *Bot) Refuse(c tele.Context) error {
	return c.Send(textRefused)
}

func (b *Bot) dumpProfiles(c tele.Context) error {
	var userID int64
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	chunks, err := b.exporter.Dump(tghelpers.BuildContext(c), userID)
	switch {
	case errors.Is(err, profile.ErrUnauthorized):
		return b.Refuse(c)
	case err != nil:
		return errors.Join(err, c.Send(textExportFailed))
	case len(chunks) == 0:
		return c.Send(export.EmptyText)
	}
	// Sent inline rather than through the async queue so chunks keep their order.
	for i, chunk := range chunks {
		if err := c.Send(chunk, &tele.SendOptions{DisableWebPagePreview: true}); err != nil {
			return fmt.Errorf("send chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return nil
}

func (b *Bot) render(c tele.Context, r dialog.Reply) error {
	if c.Callback() != nil {
		var resp []*tele.CallbackResponse
		if r.Alert != "" {
			resp = append(resp, &tele.CallbackResponse{Text: r.Alert})
		}
		if err := c.Respond(resp...); err != nil {
			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "callback.respond",
				slog.String("err", err.Error()),
			)
		}
	}
	if r.Silent() {
		return nil
	}
	markup := Markup(r.Rows)
	if r.Mode == dialog.Replace && c.Callback() != nil {
		return tghelpers.EditText(c, r.Text, markup)
	}
	return tghelpers.SendText(c, r.Text, markup)
}

// Markup converts reply rows into an inline keyboard.
func Markup(rows [][]dialog.Button) *tele.ReplyMarkup {
	if len(rows) == 0 {
		return nil
	}
	btns := make([][]keyboard.InlineBtn, 0, len(rows))
	for _, row := range rows {
		r := make([]keyboard.InlineBtn, 0, len(row))
		for _, b := range row {
			r = append(r, keyboard.InlineBtn{Text: b.Label, Unique: b.Token, Data: b.Payload, URL: b.URL})
		}
		btns = append(btns, r)
	}
	return keyboard.InlineButtonsRows(btns...)
}

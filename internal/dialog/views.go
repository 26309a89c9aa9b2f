package dialog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/m3rciful/partyfinder/internal/profile"
	"github.com/m3rciful/partyfinder/internal/search"
)

const (
	textMainMenu       = "👋 Hi! I help Dota players find teammates.\nChoose an action:"
	textEditPosition   = "🎯 Send the digit of your position:\n1 Carry\n2 Mid\n3 Offlane\n4 Soft Support\n5 Hard Support\n\nSend \"cancel\" to go back."
	textEditMode       = "🎮 Choose your preferred game mode:"
	textEditMmr        = "📊 Send your MMR as a whole number from 0 to 15000.\n\nSend \"cancel\" to go back."
	textSearchMode     = "🔍 Which mode do you want to play?"
	textPositionOption = "👥 Who are you looking for?"
	textSpecific       = "🎯 Pick the position you need:"
	textFullParty      = "🤝 Only players ready for a full party?"
	textMmrOption      = "Now choose MMR options:"
	textCustomDelta    = "✏️ Send the MMR range as a positive whole number, for example 300.\n\nSend \"cancel\" to go back."

	textNeedPosition = "🎯 Set your position first: the search uses it to find teammates for you."
	textNeedMmr      = "📊 To filter by MMR, set your MMR in the profile first."
	textNoMatches    = "😔 Nobody matches these criteria yet. Try again later!"
	textFailure      = "⚠️ Something went wrong. Please try again later."
	textHint         = "🤔 I did not understand that. Use the buttons below."
	textUnsupported  = "Unsupported action"

	hintPosition = "⚠️ Send a single digit from 1 to 5."
	hintMmr      = "⚠️ MMR must be a whole number from 0 to 15000."
	hintDelta    = "⚠️ Send a positive whole number."
)

var fixedDeltas = []int{100, 250, 500}

func btn(label, token string) Button { return Button{Label: label, Token: token} }

func btnData(label, token, payload string) Button {
	return Button{Label: label, Token: token, Payload: payload}
}

func navRow() []Button {
	return []Button{btn("⬅️ Back", TokenBack), btn("🏠 Main menu", TokenMenu)}
}

func menuRow() []Button {
	return []Button{btn("🏠 Main menu", TokenMenu)}
}

func mainMenuRows() [][]Button {
	return [][]Button{
		{btn("👤 My profile", TokenProfile), btn("🔍 Find teammates", TokenSearch)},
		{btn("🎯 Set position", TokenEditPosition), btn("🎮 Set mode", TokenEditMode)},
		{btn("📊 Set MMR", TokenEditMmr)},
	}
}

func withNotice(notice, text string) string {
	if notice == "" {
		return text
	}
	return notice + "\n\n" + text
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func mmrLabel(mmr *int) string {
	if mmr == nil {
		return "—"
	}
	return strconv.Itoa(*mmr)
}

func modeLabel(m profile.Mode) string {
	if m == "" {
		return "—"
	}
	return string(m)
}

func profileText(p profile.Profile) string {
	var b strings.Builder
	b.WriteString("👤 Your profile\n\n")
	fmt.Fprintf(&b, "🎯 Position: %s\n", p.Position.Label())
	fmt.Fprintf(&b, "🎮 Mode: %s\n", modeLabel(p.Mode))
	fmt.Fprintf(&b, "📊 MMR: %s\n", mmrLabel(p.Mmr))
	if p.Username != "" {
		fmt.Fprintf(&b, "🏷 Username: @%s\n", p.Username)
	} else {
		b.WriteString("🏷 Username: —\n")
	}
	fmt.Fprintf(&b, "🟢 Online: %s\n", yesNo(p.Online))
	fmt.Fprintf(&b, "🤝 Full party: %s\n\n", yesNo(p.FullParty))
	b.WriteString("ℹ️ Only online profiles appear in other players' searches.\n")
	b.WriteString("ℹ️ Full party means you are ready to play in a stack of five.")
	return b.String()
}

func profileRows(p profile.Profile) [][]Button {
	online := "⚫ Status: offline"
	if p.Online {
		online = "🟢 Status: online"
	}
	return [][]Button{
		{btn(online, TokenToggleOnline), btn("🤝 Full party: "+onOff(p.FullParty), TokenToggleFull)},
		{btn("🎯 Position", TokenEditPosition), btn("🎮 Mode", TokenEditMode), btn("📊 MMR", TokenEditMmr)},
		{btn("🔍 Find teammates", TokenSearch)},
		navRow(),
	}
}

func modeRows(token string) [][]Button {
	rows := make([][]Button, 0, len(profile.Modes)/2+2)
	var row []Button
	for _, m := range profile.Modes {
		row = append(row, btnData(string(m), token, string(m)))
		if len(row) == 2 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return append(rows, navRow())
}

func positionOptionRows(d SearchDraft) [][]Button {
	exclude := fmt.Sprintf("🚫 Exclude my position (%s): %s", d.OwnPosition, onOff(d.Position.ExcludesOwn()))
	spec := "🎯 Pick a specific position"
	if p, ok := d.Position.Specific(); ok {
		spec = "🎯 Position: " + p.Label()
	}
	return [][]Button{
		{btn(exclude, TokenToggleExclude)},
		{btn(spec, TokenSpecPosition)},
		{btn("➡️ Continue", TokenStartSearch)},
		navRow(),
	}
}

func specificRows() [][]Button {
	row := make([]Button, 0, len(profile.Positions))
	for _, p := range profile.Positions {
		row = append(row, btnData(p.Label(), TokenPickPosition, strconv.Itoa(int(p))))
	}
	return [][]Button{row[:3], row[3:], navRow()}
}

func fullPartyRows() [][]Button {
	return [][]Button{
		{btnData("🤝 Full party only", TokenFullParty, "yes"), btnData("🙌 Anyone", TokenFullParty, "no")},
		navRow(),
	}
}

func mmrOptionRows() [][]Button {
	deltas := make([]Button, 0, len(fixedDeltas))
	for _, d := range fixedDeltas {
		deltas = append(deltas, btnData(fmt.Sprintf("±%d", d), TokenDelta, strconv.Itoa(d)))
	}
	return [][]Button{
		{btn("No MMR filter", TokenMmrNone)},
		deltas,
		{btn("✏️ Custom range", TokenDeltaCustom)},
		navRow(),
	}
}

// promptRows returns the keyboard of a step with no live state.
func promptRows(s Step) [][]Button {
	switch s {
	case EditMode:
		return modeRows(TokenSetMode)
	case SearchMode:
		return modeRows(TokenSearchMode)
	case SpecificPosition:
		return specificRows()
	case FullPartyOption:
		return fullPartyRows()
	case MmrOption:
		return mmrOptionRows()
	case EditPosition, EditMmr, CustomDelta:
		return [][]Button{navRow()}
	}
	return mainMenuRows()
}

var promptTexts = map[Step]string{
	Idle:             textMainMenu,
	EditPosition:     textEditPosition,
	EditMode:         textEditMode,
	EditMmr:          textEditMmr,
	SearchMode:       textSearchMode,
	PositionOption:   textPositionOption,
	SpecificPosition: textSpecific,
	FullPartyOption:  textFullParty,
	MmrOption:        textMmrOption,
	CustomDelta:      textCustomDelta,
}

func resultsReply(res search.Result) Reply {
	var b strings.Builder
	b.WriteString("🔎 Search results:\n")
	rows := make([][]Button, 0, len(res.Candidates)+1)
	for _, c := range res.Candidates {
		full := "—"
		if c.FullParty {
			full = "🤝"
		}
		name := search.DisplayName(c.Summary)
		fmt.Fprintf(&b, "\n👤 %s\n%s | %s | %s | %s\n", name, c.Position.Label(), modeLabel(c.Mode), mmrLabel(c.Mmr), full)
		rows = append(rows, []Button{{Label: "✉️ Message " + name, URL: c.Contact}})
	}
	b.WriteString("\nMessage the players to arrange a game!")
	rows = append(rows, menuRow())
	return Reply{Text: b.String(), Rows: rows}
}

func noMatchesReply() Reply {
	return Reply{Text: textNoMatches, Rows: mainMenuRows()}
}

func needMmrReply() Reply {
	return Reply{Text: textNeedMmr, Rows: [][]Button{{btn("📊 Set MMR", TokenEditMmr)}, menuRow()}}
}

func needPositionReply() Reply {
	return Reply{Text: textNeedPosition, Rows: [][]Button{{btn("🎯 Set position", TokenEditPosition)}, menuRow()}}
}

func failureReply() Reply {
	return Reply{Text: textFailure, Rows: mainMenuRows()}
}

func hintReply() Reply {
	return Reply{Text: textHint, Rows: mainMenuRows()}
}

package dialog

// Callback uniques carried by inline buttons.
const (
	TokenMenu          = "menu"
	TokenBack          = "back"
	TokenProfile       = "profile"
	TokenSearch        = "search"
	TokenEditPosition  = "edit_pos"
	TokenEditMode      = "edit_mode"
	TokenEditMmr       = "edit_mmr"
	TokenToggleOnline  = "toggle_online"
	TokenToggleFull    = "toggle_full"
	TokenSetMode       = "set_mode"
	TokenSearchMode    = "search_mode"
	TokenToggleExclude = "toggle_exclude"
	TokenSpecPosition  = "spec_pos"
	TokenStartSearch   = "start_search"
	TokenPickPosition  = "pick_pos"
	TokenFullParty     = "full"
	TokenMmrNone       = "mmr_none"
	TokenDelta         = "delta"
	TokenDeltaCustom   = "delta_custom"
)

// Tokens lists every callback unique the engine understands.
var Tokens = []string{
	TokenMenu, TokenBack, TokenProfile, TokenSearch,
	TokenEditPosition, TokenEditMode, TokenEditMmr,
	TokenToggleOnline, TokenToggleFull, TokenSetMode, TokenSearchMode,
	TokenToggleExclude, TokenSpecPosition, TokenStartSearch, TokenPickPosition,
	TokenFullParty, TokenMmrNone, TokenDelta, TokenDeltaCustom,
}

// EventKind tells button presses from typed text.
type EventKind uint8

const (
	EventCallback EventKind = iota
	EventText
)

// Event is one inbound user action.
type Event struct {
	Kind     EventKind
	UserID   int64
	Username string
	// Token and Payload are set for callbacks.
	Token   string
	Payload string
	// Text is set for text messages.
	Text string
}

// Callback builds a button event.
func Callback(userID int64, username, token, payload string) Event {
	return Event{Kind: EventCallback, UserID: userID, Username: username, Token: token, Payload: payload}
}

// Text builds a text event.
func Text(userID int64, username, text string) Event {
	return Event{Kind: EventText, UserID: userID, Username: username, Text: text}
}

// RenderMode selects how a reply reaches the chat.
type RenderMode uint8

const (
	// Replace edits the message that carried the pressed button.
	Replace RenderMode = iota
	// Send posts a new message.
	Send
)

// Button is either a callback button (Token set) or a link button (URL set).
type Button struct {
	Label   string
	Token   string
	Payload string
	URL     string
}

// Reply is the rendered outcome of an event.
type Reply struct {
	Mode RenderMode
	Text string
	Rows [][]Button
	// Alert is a short callback answer shown instead of a new render when Text is empty.
	Alert string
}

// Silent reports whether the reply only answers the callback.
func (r Reply) Silent() bool { return r.Text == "" }

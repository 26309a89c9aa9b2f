package dialog

// Step is one screen of the conversation.
type Step uint8

const (
	Idle Step = iota
	Profile
	EditPosition
	EditMode
	EditMmr
	SearchMode
	PositionOption
	SpecificPosition
	FullPartyOption
	MmrOption
	CustomDelta
)

var stepNames = [...]string{
	Idle:             "idle",
	Profile:          "profile",
	EditPosition:     "edit_position",
	EditMode:         "edit_mode",
	EditMmr:          "edit_mmr",
	SearchMode:       "search_mode",
	PositionOption:   "position_option",
	SpecificPosition: "specific_position",
	FullPartyOption:  "full_party_option",
	MmrOption:        "mmr_option",
	CustomDelta:      "custom_delta",
}

func (s Step) String() string {
	if int(s) < len(stepNames) {
		return stepNames[s]
	}
	return "unknown"
}

// AcceptsText reports whether free text is routed to this step.
func (s Step) AcceptsText() bool {
	switch s {
	case EditPosition, EditMmr, CustomDelta:
		return true
	}
	return false
}

// Resting reports whether s is a screen with no flow in progress.
func (s Step) Resting() bool {
	return s == Idle || s == Profile
}

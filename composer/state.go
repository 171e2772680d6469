package composer

// State is the state of a Composer.
type State int

const (
	StateEmpty State = iota
	StateHasTextOrMedia
	StateWaitingForRecordingPermission
	StateRecordingTap
	StateRecordingHold
	StateHasRecording
	StatePlayingRecording
	StatePausedRecording
	StateEditing
)

var stateNames = [...]string{
	StateEmpty:                         "empty",
	StateHasTextOrMedia:                "hasTextOrMedia",
	StateWaitingForRecordingPermission: "waitingForRecordingPermission",
	StateRecordingTap:                  "isRecordingTap",
	StateRecordingHold:                 "isRecordingHold",
	StateHasRecording:                  "hasRecording",
	StatePlayingRecording:              "playingRecording",
	StatePausedRecording:               "pausedRecording",
	StateEditing:                       "editing",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Recording reports whether audio capture is active.
func (s State) Recording() bool {
	return s == StateRecordingTap || s == StateRecordingHold
}

func (s State) hasFinishedRecording() bool {
	return s == StateHasRecording || s == StatePlayingRecording || s == StatePausedRecording
}

// RecordMode selects how a recording is started.
type RecordMode int

const (
	// RecordTap toggles recording on and off with separate taps.
	RecordTap RecordMode = iota
	// RecordHold records while the record control is held down.
	RecordHold
)

func (m RecordMode) state() State {
	if m == RecordHold {
		return StateRecordingHold
	}
	return StateRecordingTap
}

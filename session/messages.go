package session

import "github.com/hlsplay/hlsplay/engine"

// SourceChanged is sent when the user confirms a source.
type SourceChanged struct {
	Source string
}

// SessionEvent is an engine event tagged with the session that produced it.
type SessionEvent struct {
	ID    string
	Event engine.Event
}

type (
	PlayToggled struct{}
	SeekStarted struct{}
	SeekEnded   struct{}
	MuteToggled struct{}
)

// SeekMoved carries the requested position in seconds.
type SeekMoved struct {
	Seconds float64
}

// VolumeChanged carries the requested volume in [0, 1].
type VolumeChanged struct {
	Volume float64
}

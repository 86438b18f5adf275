package session

import (
	"errors"
	"fmt"

	"github.com/hlsplay/hlsplay/engine"
	"github.com/samber/mo"
)

// ErrEmptySource is the cause of an InvalidSource fault.
var ErrEmptySource = errors.New("source is empty")

// Phase is the controller's position in the session lifecycle.
type Phase int

const (
	Idle Phase = iota
	Attaching
	Loading
	Ready
	Playing
	Paused
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Attaching:
		return "attaching"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Playable reports whether transport controls apply.
func (p Phase) Playable() bool {
	return p >= Ready
}

// FaultKind classifies a non-fatal failure.
type FaultKind int

const (
	InvalidSource FaultKind = iota
	AttachFailure
	LoadFailure
	PlaybackBlocked
)

func (k FaultKind) String() string {
	switch k {
	case InvalidSource:
		return "invalid source"
	case AttachFailure:
		return "attach failure"
	case LoadFailure:
		return "load failure"
	case PlaybackBlocked:
		return "playback blocked"
	default:
		return "unknown fault"
	}
}

// Fault annotates the playback state. It never stops the controller.
type Fault struct {
	Kind FaultKind
	Err  error
}

func (f Fault) Error() string {
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f Fault) Unwrap() error {
	return f.Err
}

// PlaybackState is the UI-facing mirror of the media element.
type PlaybackState struct {
	Duration    float64
	CurrentTime float64
	Playing     bool
	Volume      float64
	Muted       bool
}

// Snapshot is a copy of everything the controller exposes for rendering.
type Snapshot struct {
	PlaybackState

	Phase     Phase
	Source    string
	SessionID string
	Seeking   bool
	Live      bool
	Levels    []engine.Level
	Fault     mo.Option[Fault]
}

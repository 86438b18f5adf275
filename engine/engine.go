// Package engine defines the streaming engine a playback session drives:
// it binds to a media element, resolves a source and reports its lifecycle.
package engine

import (
	"fmt"

	"github.com/hlsplay/hlsplay/player"
)

// Engine is a single-use streaming engine instance. Events are delivered in order
// on a goroutine owned by the engine; none are delivered after Destroy returns.
type Engine interface {
	// AttachMedia binds the engine to element and emits MediaAttached once the
	// element is ready.
	AttachMedia(element player.Element)

	// LoadSource resolves url. Valid only after MediaAttached.
	LoadSource(url string)

	// On registers the single receiver of engine events.
	On(handler func(Event))

	// Destroy cancels in-flight work, unbinds the element and suppresses further events.
	// Calling it more than once is a no-op.
	Destroy()
}

// Factory builds a fresh engine for each session.
type Factory func() Engine

// Event is one of MediaAttached, ManifestParsed, LevelLoaded or Error.
type Event interface {
	engineEvent()
}

type MediaAttached struct{}

// ManifestParsed carries the playable levels of the source.
type ManifestParsed struct {
	Levels []Level
}

// LevelLoaded carries the details of the level chosen for playback.
// It is emitted again on every live playlist refresh.
type LevelLoaded struct {
	Level   int
	Details LevelDetails
}

// Stage tells where an engine error happened.
type Stage int

const (
	StageAttach Stage = iota
	StageManifest
	StageLevel
)

func (s Stage) String() string {
	switch s {
	case StageAttach:
		return "attach"
	case StageManifest:
		return "manifest"
	case StageLevel:
		return "level"
	default:
		return "unknown"
	}
}

// Error is a non-recoverable failure of the engine instance.
type Error struct {
	Stage Stage
	Err   error
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e Error) Unwrap() error {
	return e.Err
}

func (MediaAttached) engineEvent()  {}
func (ManifestParsed) engineEvent() {}
func (LevelLoaded) engineEvent()    {}
func (Error) engineEvent()          {}

// Level is one quality tier of a stream.
type Level struct {
	Index     int    `json:"index"`
	URI       string `json:"uri"`
	Bandwidth uint32 `json:"bandwidth"`
	Codecs    string `json:"codecs,omitempty"`
	Name      string `json:"name,omitempty"`
}

// LevelDetails describes a level's media playlist.
type LevelDetails struct {
	// TotalDuration is the sum of segment durations in seconds.
	TotalDuration  float64 `json:"total_duration"`
	Live           bool    `json:"live"`
	Segments       int     `json:"segments"`
	TargetDuration float64 `json:"target_duration"`
}

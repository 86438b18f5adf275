// Package player is the native media element the streaming engine binds to.
//
// An Element is shared by successive playback sessions. At most one owner can be
// attached at a time; commands that belong to a session (Load) are refused for
// anyone but the current owner, while transport commands (play, pause, seek,
// volume, mute) are owner-agnostic because the controller is their only writer.
package player

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrBusy is returned by Attach while another owner holds the element.
	ErrBusy = errors.New("element is attached to another session")

	// ErrDetached is returned by Load for an owner that does not hold the element.
	ErrDetached = errors.New("element is not attached to this session")

	// ErrNotReady is returned by transport commands before the element is running.
	ErrNotReady = errors.New("element is not ready")
)

// EventKind enumerates what the element reports back.
type EventKind int

const (
	TimeUpdated EventKind = iota
	Played
	Paused
)

func (k EventKind) String() string {
	switch k {
	case TimeUpdated:
		return "time-updated"
	case Played:
		return "played"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

// Event is a state change observed on the element.
type Event struct {
	Kind EventKind

	// Seconds is the playback position, set for TimeUpdated only.
	Seconds float64
}

// Element is the capability surface of a media playback sink.
type Element interface {
	// Attach binds the element to owner. It fails with ErrBusy while another owner is attached.
	Attach(owner string) error

	// Detach releases owner's binding and unloads its media. No-op for anyone else.
	Detach(owner string)

	// Ready blocks until the element can accept media.
	Ready(ctx context.Context) error

	// Load hands a source to the element, paused.
	Load(owner, url string, headers map[string]string) error

	Play() error
	Pause() error
	SetCurrentTime(seconds float64) error

	// SetVolume takes a value in [0, 1].
	SetVolume(volume float64) error
	SetMuted(muted bool) error

	// OnEvent registers the single receiver of element events. Handlers run on the
	// element's goroutine and must not block.
	OnEvent(handler func(Event))

	Close() error
}

// binding tracks which owner currently holds an element.
type binding struct {
	mu    sync.Mutex
	owner string
}

func (b *binding) claim(owner string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.owner != "" && b.owner != owner {
		return ErrBusy
	}
	b.owner = owner
	return nil
}

// release reports whether owner was the holder.
func (b *binding) release(owner string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.owner == "" || b.owner != owner {
		return false
	}
	b.owner = ""
	return true
}

func (b *binding) holds(owner string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return owner != "" && b.owner == owner
}

// Owner returns the current holder, empty when detached.
func (b *binding) Owner() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.owner
}

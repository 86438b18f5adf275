// Package session is the playback session controller. It keeps at most one
// streaming engine bound to the media element and mirrors the element's state.
package session

import (
	"github.com/google/uuid"
	"github.com/hlsplay/hlsplay/engine"
)

// Session binds one source to one engine instance.
type Session struct {
	ID     string
	Source string

	engine     engine.Engine
	released   bool
	autoplayed bool
}

func newSession(source string, e engine.Engine) *Session {
	return &Session{
		ID:     uuid.NewString(),
		Source: source,
		engine: e,
	}
}

// Release destroys the engine. Releasing twice is a no-op.
func (s *Session) Release() {
	if s == nil || s.released {
		return
	}

	s.released = true
	s.engine.Destroy()
}

// Released reports whether Release has run.
func (s *Session) Released() bool {
	return s == nil || s.released
}

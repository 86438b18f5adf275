package session

import (
	"github.com/hlsplay/hlsplay/engine"
	"github.com/hlsplay/hlsplay/log"
	"github.com/hlsplay/hlsplay/player"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

// Controller is a finite-state machine driven by Dispatch. It is not safe for
// concurrent use: engines and the element report through emit, and the owner of
// the event loop feeds those messages back into Dispatch.
type Controller struct {
	element   player.Element
	newEngine engine.Factory
	emit      func(any)

	session *Session
	phase   Phase
	state   PlaybackState
	fault   mo.Option[Fault]
	seeking bool
	live    bool
	levels  []engine.Level

	// lastAudible is restored when unmuting at zero volume
	lastAudible float64
}

// Option configures a Controller.
type Option func(*Controller)

// WithAudio sets the initial volume and mute flag and pushes them to the element.
func WithAudio(volume float64, muted bool) Option {
	return func(c *Controller) {
		c.state.Volume = lo.Clamp(volume, 0, 1)
		c.state.Muted = muted
	}
}

// New creates an idle controller. Element events are routed through emit.
func New(element player.Element, newEngine engine.Factory, emit func(any), options ...Option) *Controller {
	c := &Controller{
		element:   element,
		newEngine: newEngine,
		emit:      emit,
		state:     PlaybackState{Volume: 1},
	}

	for _, option := range options {
		option(c)
	}

	c.lastAudible = lo.Ternary(c.state.Volume > 0, c.state.Volume, 1)
	c.applyVolume()
	c.applyMuted()

	element.OnEvent(func(event player.Event) {
		emit(event)
	})

	return c
}

// Dispatch applies one message. Unknown messages are ignored.
func (c *Controller) Dispatch(msg any) {
	switch msg := msg.(type) {
	case SourceChanged:
		c.changeSource(msg.Source)
	case SessionEvent:
		c.handleSessionEvent(msg)
	case player.Event:
		c.handleElementEvent(msg)
	case PlayToggled:
		c.togglePlay()
	case SeekStarted:
		c.startSeek()
	case SeekMoved:
		c.moveSeek(msg.Seconds)
	case SeekEnded:
		c.endSeek()
	case VolumeChanged:
		c.setVolume(msg.Volume)
	case MuteToggled:
		c.toggleMute()
	}
}

// Snapshot copies the current state.
func (c *Controller) Snapshot() Snapshot {
	snapshot := Snapshot{
		PlaybackState: c.state,
		Phase:         c.phase,
		Seeking:       c.seeking,
		Live:          c.live,
		Levels:        append([]engine.Level(nil), c.levels...),
		Fault:         c.fault,
	}

	if c.session != nil {
		snapshot.Source = c.session.Source
		snapshot.SessionID = c.session.ID
	}

	return snapshot
}

// Close releases the current session.
func (c *Controller) Close() {
	c.release()
	c.phase = Idle
}

func (c *Controller) changeSource(source string) {
	if c.session != nil && c.session.Source == source && c.fault.IsAbsent() {
		log.Debugf("source %q confirmed again, keeping session %s", source, c.session.ID)
		return
	}

	c.release()
	c.fault = mo.None[Fault]()
	c.state.Duration = 0
	c.state.CurrentTime = 0
	c.seeking = false
	c.live = false
	c.levels = nil

	if source == "" {
		c.phase = Idle
		c.setFault(InvalidSource, ErrEmptySource)
		return
	}

	e := c.newEngine()
	s := newSession(source, e)
	c.session = s
	c.phase = Attaching

	log.WithFields(log.Fields{"session": s.ID, "source": source}).Info("session created")

	e.On(func(event engine.Event) {
		c.emit(SessionEvent{ID: s.ID, Event: event})
	})
	e.AttachMedia(c.element)
}

func (c *Controller) release() {
	if c.session == nil {
		return
	}

	log.WithFields(log.Fields{"session": c.session.ID}).Info("session released")
	c.session.Release()
	c.session = nil
}

func (c *Controller) handleSessionEvent(msg SessionEvent) {
	if c.session == nil || c.session.Released() || msg.ID != c.session.ID {
		log.Debugf("dropping %T from stale session %s", msg.Event, msg.ID)
		return
	}

	switch event := msg.Event.(type) {
	case engine.MediaAttached:
		if c.phase != Attaching {
			return
		}
		c.phase = Loading
		c.session.engine.LoadSource(c.session.Source)
	case engine.ManifestParsed:
		if c.phase == Loading {
			c.phase = Ready
		}
		c.levels = event.Levels
	case engine.LevelLoaded:
		c.levelLoaded(event)
	case engine.Error:
		c.setFault(lo.Ternary(event.Stage == engine.StageAttach, AttachFailure, LoadFailure), event.Err)
	}
}

func (c *Controller) levelLoaded(event engine.LevelLoaded) {
	c.state.Duration = max(event.Details.TotalDuration, 0)
	c.live = event.Details.Live

	if c.session.autoplayed {
		c.state.CurrentTime = lo.Clamp(c.state.CurrentTime, 0, c.state.Duration)
		return
	}

	c.session.autoplayed = true
	c.state.CurrentTime = 0
	if err := c.element.SetCurrentTime(0); err != nil {
		log.Warnf("rewind on load: %v", err)
	}
	c.play()
}

func (c *Controller) handleElementEvent(event player.Event) {
	switch event.Kind {
	case player.TimeUpdated:
		if c.seeking {
			return
		}
		c.state.CurrentTime = lo.Clamp(event.Seconds, 0, c.state.Duration)
	case player.Played:
		c.state.Playing = true
		if c.phase.Playable() {
			c.phase = Playing
		}
	case player.Paused:
		c.state.Playing = false
		if c.phase.Playable() {
			c.phase = Paused
		}
	}
}

// play issues a play command. Playing itself only changes on the element's Played event.
func (c *Controller) play() {
	if err := c.element.Play(); err != nil {
		c.setFault(PlaybackBlocked, err)
	}
}

func (c *Controller) pause() {
	if err := c.element.Pause(); err != nil {
		log.Warnf("pause: %v", err)
	}
}

func (c *Controller) togglePlay() {
	if !c.phase.Playable() {
		return
	}

	if c.state.Playing {
		c.pause()
		return
	}

	c.play()
}

// startSeek begins a gesture. Live windows slide under the element's clock,
// so they are not seekable.
func (c *Controller) startSeek() {
	if !c.phase.Playable() || c.state.Duration == 0 || c.live || c.seeking {
		return
	}

	c.seeking = true
	c.pause()
}

func (c *Controller) moveSeek(seconds float64) {
	if !c.seeking {
		return
	}

	c.state.CurrentTime = lo.Clamp(seconds, 0, c.state.Duration)
	if err := c.element.SetCurrentTime(c.state.CurrentTime); err != nil {
		log.Warnf("seek to %.2f: %v", c.state.CurrentTime, err)
	}
}

func (c *Controller) endSeek() {
	if !c.seeking {
		return
	}

	c.seeking = false
	c.play()
}

func (c *Controller) setVolume(volume float64) {
	c.state.Volume = lo.Clamp(volume, 0, 1)
	if c.state.Volume > 0 {
		c.lastAudible = c.state.Volume
	}
	c.applyVolume()
}

func (c *Controller) toggleMute() {
	c.state.Muted = !c.state.Muted

	if !c.state.Muted && c.state.Volume == 0 {
		c.state.Volume = c.lastAudible
		c.applyVolume()
	}

	c.applyMuted()
}

func (c *Controller) applyVolume() {
	if err := c.element.SetVolume(c.state.Volume); err != nil {
		log.Warnf("set volume: %v", err)
	}
}

func (c *Controller) applyMuted() {
	if err := c.element.SetMuted(c.state.Muted); err != nil {
		log.Warnf("set muted: %v", err)
	}
}

func (c *Controller) setFault(kind FaultKind, err error) {
	fault := Fault{Kind: kind, Err: err}
	log.Warn(fault.Error())
	c.fault = mo.Some(fault)
}

package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/hlsplay/hlsplay/engine"
	"github.com/hlsplay/hlsplay/player"
)

// journal is the ordered record of calls made on the fakes.
type journal []string

func (j *journal) add(format string, args ...any) {
	*j = append(*j, fmt.Sprintf(format, args...))
}

type fakeElement struct {
	journal *journal

	owner       string
	maxAttached int
	attached    int

	volume  float64
	muted   bool
	current float64
	plays   int
	pauses  int

	playErr error
	handler func(player.Event)
}

func (f *fakeElement) Attach(owner string) error {
	if f.owner != "" && f.owner != owner {
		return player.ErrBusy
	}
	f.owner = owner
	f.attached++
	f.maxAttached = max(f.maxAttached, f.attached)
	f.journal.add("attach")
	return nil
}

func (f *fakeElement) Detach(owner string) {
	if f.owner != owner {
		return
	}
	f.owner = ""
	f.attached--
	f.journal.add("detach")
}

func (f *fakeElement) Ready(context.Context) error { return nil }

func (f *fakeElement) Load(owner, url string, _ map[string]string) error {
	if f.owner != owner {
		return player.ErrDetached
	}
	f.journal.add("load %s", url)
	return nil
}

func (f *fakeElement) Play() error {
	f.plays++
	f.journal.add("play")
	return f.playErr
}

func (f *fakeElement) Pause() error {
	f.pauses++
	f.journal.add("pause")
	return nil
}

func (f *fakeElement) SetCurrentTime(seconds float64) error {
	f.current = seconds
	f.journal.add("seek %.1f", seconds)
	return nil
}

func (f *fakeElement) SetVolume(volume float64) error {
	f.volume = volume
	return nil
}

func (f *fakeElement) SetMuted(muted bool) error {
	f.muted = muted
	return nil
}

func (f *fakeElement) OnEvent(handler func(player.Event)) { f.handler = handler }
func (f *fakeElement) Close() error                       { return nil }

// fakeEngine attaches synchronously and reports nothing on its own;
// tests deliver engine events through Dispatch.
type fakeEngine struct {
	journal   *journal
	id        int
	element   player.Element
	owner     string
	handler   func(engine.Event)
	loaded    []string
	destroyed int
}

func (f *fakeEngine) AttachMedia(element player.Element) {
	f.owner = fmt.Sprintf("engine-%d", f.id)
	if err := element.Attach(f.owner); err != nil {
		f.handler(engine.Error{Stage: engine.StageAttach, Err: err})
		return
	}
	f.element = element
}

func (f *fakeEngine) LoadSource(url string) {
	f.loaded = append(f.loaded, url)
	if f.element != nil {
		_ = f.element.Load(f.owner, url, nil)
	}
}

func (f *fakeEngine) On(handler func(engine.Event)) { f.handler = handler }

func (f *fakeEngine) Destroy() {
	f.destroyed++
	f.journal.add("destroy %d", f.id)
	if f.element != nil {
		f.element.Detach(f.owner)
	}
}

type fixture struct {
	journal    *journal
	element    *fakeElement
	engines    []*fakeEngine
	emitted    []any
	controller *Controller
}

func newFixture(options ...Option) *fixture {
	f := &fixture{journal: new(journal)}
	f.element = &fakeElement{journal: f.journal}

	factory := func() engine.Engine {
		e := &fakeEngine{journal: f.journal, id: len(f.engines)}
		f.engines = append(f.engines, e)
		return e
	}

	f.controller = New(f.element, factory, func(msg any) { f.emitted = append(f.emitted, msg) }, options...)
	return f
}

func (f *fixture) current() *fakeEngine {
	return f.engines[len(f.engines)-1]
}

func (f *fixture) session() string {
	return f.controller.Snapshot().SessionID
}

func (f *fixture) engineEvent(event engine.Event) {
	f.controller.Dispatch(SessionEvent{ID: f.session(), Event: event})
}

// load drives a source up to the first LevelLoaded and the element's Played answer.
func (f *fixture) load(source string, duration float64) {
	f.controller.Dispatch(SourceChanged{Source: source})
	f.engineEvent(engine.MediaAttached{})
	f.engineEvent(engine.ManifestParsed{Levels: []engine.Level{{URI: source}}})
	f.engineEvent(engine.LevelLoaded{Details: engine.LevelDetails{TotalDuration: duration}})
	f.controller.Dispatch(player.Event{Kind: player.Played})
}

var errBlocked = errors.New("autoplay blocked")

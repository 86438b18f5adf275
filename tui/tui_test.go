package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hlsplay/hlsplay/engine"
	"github.com/hlsplay/hlsplay/filesystem"
	"github.com/hlsplay/hlsplay/form"
	"github.com/hlsplay/hlsplay/internal/ui"
	"github.com/hlsplay/hlsplay/key"
	"github.com/hlsplay/hlsplay/player"
	"github.com/hlsplay/hlsplay/session"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

const source = "https://example.com/live/master.m3u8"

func init() {
	filesystem.SetMemMapFs()
	viper.Set(key.PlayerSeekStep, 5)
	viper.Set(key.PlayerVolumeStep, 5)
	viper.Set(key.HistorySave, false)
	viper.Set(key.TUIPrompt, "> ")
}

type fakeElement struct {
	owner   string
	current float64
	volume  float64
	muted   bool
	plays   int
	pauses  int
	handler func(player.Event)
}

func (f *fakeElement) Attach(owner string) error {
	if f.owner != "" && f.owner != owner {
		return player.ErrBusy
	}
	f.owner = owner
	return nil
}

func (f *fakeElement) Detach(owner string) {
	if f.owner == owner {
		f.owner = ""
	}
}

func (f *fakeElement) Ready(context.Context) error { return nil }

func (f *fakeElement) Load(owner, _ string, _ map[string]string) error {
	if f.owner != owner {
		return player.ErrDetached
	}
	return nil
}

func (f *fakeElement) Play() error {
	f.plays++
	f.handler(player.Event{Kind: player.Played})
	return nil
}

func (f *fakeElement) Pause() error {
	f.pauses++
	f.handler(player.Event{Kind: player.Paused})
	return nil
}

func (f *fakeElement) SetCurrentTime(seconds float64) error {
	f.current = seconds
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

// fakeEngine answers every step right away with a two minute VOD level.
type fakeEngine struct {
	owner   string
	element player.Element
	handler func(engine.Event)
}

func (f *fakeEngine) AttachMedia(element player.Element) {
	if err := element.Attach(f.owner); err != nil {
		f.handler(engine.Error{Stage: engine.StageAttach, Err: err})
		return
	}
	f.element = element
	f.handler(engine.MediaAttached{})
}

func (f *fakeEngine) LoadSource(url string) {
	if err := f.element.Load(f.owner, url, nil); err != nil {
		f.handler(engine.Error{Stage: engine.StageManifest, Err: err})
		return
	}
	f.handler(engine.ManifestParsed{Levels: []engine.Level{{URI: url}}})
	f.handler(engine.LevelLoaded{Details: engine.LevelDetails{TotalDuration: 120}})
}

func (f *fakeEngine) On(handler func(engine.Event)) { f.handler = handler }

func (f *fakeEngine) Destroy() {
	if f.element != nil {
		f.element.Detach(f.owner)
	}
}

func newTestBubble() (*statefulBubble, *fakeElement) {
	element := &fakeElement{}
	engines := 0

	b := newBubble(&Options{Volume: 1}, element, func() engine.Engine {
		engines++
		return &fakeEngine{owner: strings.Repeat("e", engines)}
	})
	b.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	return b, element
}

// drain delivers every queued engine and element message.
func drain(b *statefulBubble) {
	for {
		select {
		case msg := <-b.events:
			b.Update(msg)
		default:
			return
		}
	}
}

func press(b *statefulBubble, keys string) tea.Cmd {
	var msg tea.KeyMsg
	switch keys {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "left":
		msg = tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}

	_, cmd := b.Update(msg)
	drain(b)
	return cmd
}

func load(b *statefulBubble) {
	b.Update(form.SubmitMsg{Source: source})
	drain(b)
}

func mouse(b *statefulBubble, action tea.MouseAction, line int, fraction float64, bar int) {
	b.Update(tea.MouseMsg{
		X:      paddingStyle.GetPaddingLeft() + labelWidth + int(fraction*float64(bar)),
		Y:      paddingStyle.GetPaddingTop() + line,
		Action: action,
		Button: tea.MouseButtonLeft,
	})
	drain(b)
}

func TestBubbleLoad(t *testing.T) {
	Convey("Given a fresh player", t, func() {
		b, element := newTestBubble()

		Convey("Then the form has focus", func() {
			So(b.state, ShouldEqual, formState)
			So(b.controller.Snapshot().Phase, ShouldEqual, session.Idle)
		})

		Convey("When a source is submitted", func() {
			load(b)
			snapshot := b.controller.Snapshot()

			Convey("Then it plays from the start", func() {
				So(snapshot.Phase, ShouldEqual, session.Playing)
				So(snapshot.Playing, ShouldBeTrue)
				So(snapshot.Duration, ShouldEqual, 120)
				So(element.plays, ShouldEqual, 1)
			})

			Convey("Then the controls have focus", func() {
				So(b.state, ShouldEqual, controlsState)
			})

			Convey("Then the view shows the source and duration", func() {
				view := b.View()
				So(view, ShouldContainSubstring, source)
				So(view, ShouldContainSubstring, "2:00")
			})
		})

		Convey("When an empty source is submitted", func() {
			_, cmd := b.Update(form.SubmitMsg{Source: ""})

			Convey("Then the fault is shown and notified", func() {
				So(b.View(), ShouldContainSubstring, "invalid source")
				So(cmd, ShouldNotBeNil)

				msgs := collect(cmd)
				So(msgs, ShouldContain, ui.NotificationMsg{Text: "invalid source: source is empty"})
			})

			Convey("Then the form keeps focus", func() {
				So(b.state, ShouldEqual, formState)
			})
		})
	})
}

// collect runs cmd and flattens batches.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		return []tea.Msg{cmd()}
	}

	var msgs []tea.Msg
	for _, c := range batch {
		msgs = append(msgs, collect(c)...)
	}
	return msgs
}

func TestBubbleKeyboard(t *testing.T) {
	Convey("Given a playing source", t, func() {
		b, element := newTestBubble()
		load(b)

		Convey("When space is pressed", func() {
			press(b, " ")

			Convey("Then playback pauses", func() {
				So(element.pauses, ShouldEqual, 1)
				So(b.controller.Snapshot().Phase, ShouldEqual, session.Paused)
			})

			Convey("And pressed again, playback resumes", func() {
				press(b, " ")
				So(b.controller.Snapshot().Phase, ShouldEqual, session.Playing)
			})
		})

		Convey("When seeking forward twice", func() {
			press(b, "right")
			press(b, "right")

			Convey("Then a single gesture moves ten seconds", func() {
				snapshot := b.controller.Snapshot()
				So(snapshot.Seeking, ShouldBeTrue)
				So(snapshot.CurrentTime, ShouldEqual, 10)
				So(element.current, ShouldEqual, 10)
				So(element.pauses, ShouldEqual, 1)
			})

			Convey("And an outdated idle tick arrives, the gesture continues", func() {
				b.Update(seekIdleMsg{generation: b.seekGeneration - 1})
				So(b.controller.Snapshot().Seeking, ShouldBeTrue)
			})

			Convey("And the latest idle tick arrives, playback resumes", func() {
				b.Update(seekIdleMsg{generation: b.seekGeneration})
				drain(b)

				So(b.controller.Snapshot().Seeking, ShouldBeFalse)
				So(b.controller.Snapshot().Playing, ShouldBeTrue)
				So(element.plays, ShouldEqual, 2)
			})
		})

		Convey("When seeking backward at the start", func() {
			press(b, "left")

			Convey("Then the position stays at zero", func() {
				So(b.controller.Snapshot().CurrentTime, ShouldEqual, 0)
			})
		})

		Convey("When lowering the volume", func() {
			press(b, "-")

			Convey("Then it drops by one step", func() {
				So(b.controller.Snapshot().Volume, ShouldAlmostEqual, 0.95)
				So(element.volume, ShouldAlmostEqual, 0.95)
			})
		})

		Convey("When raising the volume at the maximum", func() {
			press(b, "+")

			Convey("Then it stays at the maximum", func() {
				So(b.controller.Snapshot().Volume, ShouldEqual, 1)
			})
		})

		Convey("When toggling mute", func() {
			press(b, "m")

			Convey("Then the element is muted", func() {
				So(element.muted, ShouldBeTrue)
				So(b.View(), ShouldContainSubstring, "muted")
			})
		})

		Convey("When toggling help", func() {
			press(b, "?")

			Convey("Then the full help is shown", func() {
				So(b.helpC.ShowAll, ShouldBeTrue)
			})
		})

		Convey("When focusing the form", func() {
			press(b, "/")

			Convey("Then keys go to the input", func() {
				So(b.state, ShouldEqual, formState)

				press(b, "m")
				So(element.muted, ShouldBeFalse)
				So(b.formC.Value(), ShouldEndWith, "m")
			})

			Convey("And pressing esc, the controls have focus again", func() {
				press(b, "esc")
				So(b.state, ShouldEqual, controlsState)
			})
		})

		Convey("When quitting", func() {
			cmd := press(b, "q")

			Convey("Then the program quits and the session is released", func() {
				So(cmd, ShouldNotBeNil)
				So(collect(cmd), ShouldContain, tea.QuitMsg{})
				So(element.owner, ShouldBeEmpty)
			})
		})
	})
}

func TestBubbleMouse(t *testing.T) {
	Convey("Given a playing source", t, func() {
		b, element := newTestBubble()
		load(b)

		Convey("When dragging on the seek bar", func() {
			mouse(b, tea.MouseActionPress, seekLine, 0.25, b.seekC.Width)

			Convey("Then playback pauses at the pointer", func() {
				snapshot := b.controller.Snapshot()
				So(snapshot.Seeking, ShouldBeTrue)
				So(snapshot.CurrentTime, ShouldAlmostEqual, 30, 2)
				So(element.pauses, ShouldEqual, 1)
			})

			Convey("And releasing, playback resumes at the release point", func() {
				mouse(b, tea.MouseActionMotion, seekLine, 0.5, b.seekC.Width)
				mouse(b, tea.MouseActionRelease, seekLine, 0.5, b.seekC.Width)

				snapshot := b.controller.Snapshot()
				So(snapshot.Seeking, ShouldBeFalse)
				So(snapshot.CurrentTime, ShouldAlmostEqual, 60, 2)
				So(snapshot.Playing, ShouldBeTrue)
			})

			Convey("And pressing arrow keys meanwhile, they are ignored", func() {
				before := b.controller.Snapshot().CurrentTime
				press(b, "right")
				So(b.controller.Snapshot().CurrentTime, ShouldEqual, before)
			})
		})

		Convey("When clicking the volume bar", func() {
			mouse(b, tea.MouseActionPress, volumeLine, 0.5, b.volumeC.Width)
			mouse(b, tea.MouseActionRelease, volumeLine, 0.5, b.volumeC.Width)

			Convey("Then the volume follows the pointer", func() {
				So(b.controller.Snapshot().Volume, ShouldAlmostEqual, 0.5, 0.05)
			})
		})

		Convey("When clicking left of the volume bar", func() {
			mouse(b, tea.MouseActionPress, volumeLine, -0.5, b.volumeC.Width)

			Convey("Then the volume is clamped to zero", func() {
				So(b.controller.Snapshot().Volume, ShouldEqual, 0)
			})
		})
	})
}

func TestBubbleResize(t *testing.T) {
	Convey("Given a narrow terminal", t, func() {
		b, _ := newTestBubble()
		b.Update(tea.WindowSizeMsg{Width: 20, Height: 10})

		Convey("Then the bars keep their minimum width", func() {
			So(b.seekC.Width, ShouldEqual, minBarWidth)
			So(b.volumeC.Width, ShouldEqual, minBarWidth)
		})
	})
}

func TestBubbleInitialSize(t *testing.T) {
	Convey("Given a terminal of known size", t, func() {
		original := terminalSize
		terminalSize = func() (int, int, error) { return 100, 40, nil }
		defer func() { terminalSize = original }()

		Convey("When the player is created", func() {
			b := newBubble(&Options{Volume: 1}, &fakeElement{}, func() engine.Engine { return &fakeEngine{owner: "e"} })

			Convey("Then the bars fit the terminal before the first resize message", func() {
				So(b.seekC.Width, ShouldEqual, 100-paddingStyle.GetHorizontalFrameSize()-2*labelWidth)
				So(b.volumeC.Width, ShouldEqual, b.seekC.Width)
			})
		})
	})
}

func TestBubbleStop(t *testing.T) {
	Convey("Given a full event queue", t, func() {
		b, _ := newTestBubble()
		for i := 0; i < eventBuffer; i++ {
			b.enqueue(player.Event{Kind: player.TimeUpdated})
		}

		Convey("When the loop stops", func() {
			b.stop()

			Convey("Then further events are dropped instead of blocking", func() {
				sent := make(chan struct{})
				go func() {
					b.enqueue(player.Event{Kind: player.TimeUpdated})
					close(sent)
				}()

				var delivered bool
				select {
				case <-sent:
					delivered = true
				case <-time.After(time.Second):
				}
				So(delivered, ShouldBeTrue)
			})

			Convey("Then stopping again is harmless", func() {
				So(b.stop, ShouldNotPanic)
			})
		})
	})
}

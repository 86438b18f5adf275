package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hlsplay/hlsplay/form"
	"github.com/hlsplay/hlsplay/history"
	"github.com/hlsplay/hlsplay/internal/ui"
	hkey "github.com/hlsplay/hlsplay/key"
	"github.com/hlsplay/hlsplay/log"
	"github.com/hlsplay/hlsplay/player"
	"github.com/hlsplay/hlsplay/query"
	"github.com/hlsplay/hlsplay/session"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// seekIdle ends a keyboard seek gesture after the last arrow press.
const seekIdle = 600 * time.Millisecond

type seekIdleMsg struct {
	generation int
}

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if cmd := b.notifier.Update(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case session.SessionEvent, player.Event:
		cmds = append(cmds, b.dispatch(msg), b.listen())
	case form.SubmitMsg:
		cmds = append(cmds, b.submit(msg.Source))
	case seekIdleMsg:
		if msg.generation == b.seekGeneration && b.keyboardSeek {
			b.keyboardSeek = false
			cmds = append(cmds, b.dispatch(session.SeekEnded{}))
		}
	case tea.MouseMsg:
		cmds = append(cmds, b.updateMouse(msg))
	case tea.KeyMsg:
		if key.Matches(msg, b.keymap.forceQuit) {
			return b, b.quit()
		}

		switch b.state {
		case formState:
			cmds = append(cmds, b.updateForm(msg))
		case controlsState:
			cmds = append(cmds, b.updateControls(msg))
		}
	default:
		var cmd tea.Cmd
		b.formC, cmd = b.formC.Update(msg)
		cmds = append(cmds, cmd)
	}

	return b, tea.Batch(cmds...)
}

func (b *statefulBubble) updateForm(msg tea.KeyMsg) tea.Cmd {
	acceptsSuggestion := key.Matches(msg, b.keymap.acceptSuggestion) && b.formC.Suggestion().IsPresent()

	if key.Matches(msg, b.keymap.focusControls) && !acceptsSuggestion {
		return b.focus(controlsState)
	}

	var cmd tea.Cmd
	b.formC, cmd = b.formC.Update(msg)
	return cmd
}

func (b *statefulBubble) updateControls(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, b.keymap.quit):
		return b.quit()
	case key.Matches(msg, b.keymap.focusForm):
		return b.focus(formState)
	case key.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	case key.Matches(msg, b.keymap.playPause):
		return b.dispatch(session.PlayToggled{})
	case key.Matches(msg, b.keymap.seekBackward):
		return b.seekBy(-float64(viper.GetInt(hkey.PlayerSeekStep)))
	case key.Matches(msg, b.keymap.seekForward):
		return b.seekBy(float64(viper.GetInt(hkey.PlayerSeekStep)))
	case key.Matches(msg, b.keymap.volumeUp):
		return b.changeVolume(1)
	case key.Matches(msg, b.keymap.volumeDown):
		return b.changeVolume(-1)
	case key.Matches(msg, b.keymap.mute):
		return b.dispatch(session.MuteToggled{})
	}

	return nil
}

func (b *statefulBubble) changeVolume(direction float64) tea.Cmd {
	step := float64(viper.GetInt(hkey.PlayerVolumeStep)) / 100
	volume := b.controller.Snapshot().Volume + direction*step
	return b.dispatch(session.VolumeChanged{Volume: volume})
}

// seekBy moves within a keyboard gesture, starting one if needed.
func (b *statefulBubble) seekBy(delta float64) tea.Cmd {
	if b.mouseSeek {
		return nil
	}

	if !b.controller.Snapshot().Seeking {
		b.controller.Dispatch(session.SeekStarted{})
		if !b.controller.Snapshot().Seeking {
			return nil
		}
		b.keyboardSeek = true
	}

	current := b.controller.Snapshot().CurrentTime
	cmd := b.dispatch(session.SeekMoved{Seconds: current + delta})

	b.seekGeneration++
	generation := b.seekGeneration

	return tea.Batch(cmd, tea.Tick(seekIdle, func(time.Time) tea.Msg {
		return seekIdleMsg{generation: generation}
	}))
}

func (b *statefulBubble) updateMouse(msg tea.MouseMsg) tea.Cmd {
	row := msg.Y - paddingStyle.GetPaddingTop()

	fraction := func(width int) float64 {
		x := msg.X - paddingStyle.GetPaddingLeft() - labelWidth
		return lo.Clamp(float64(x)/float64(max(width, 1)), 0, 1)
	}

	seekTo := func() tea.Cmd {
		return b.dispatch(session.SeekMoved{Seconds: fraction(b.seekC.Width) * b.controller.Snapshot().Duration})
	}

	switch msg.Action {
	case tea.MouseActionPress:
		switch {
		case msg.Button == tea.MouseButtonWheelUp && row == volumeLine:
			return b.changeVolume(1)
		case msg.Button == tea.MouseButtonWheelDown && row == volumeLine:
			return b.changeVolume(-1)
		case msg.Button != tea.MouseButtonLeft:
			return nil
		case row == seekLine:
			if !b.controller.Snapshot().Seeking {
				b.controller.Dispatch(session.SeekStarted{})
				if !b.controller.Snapshot().Seeking {
					return nil
				}
			}
			b.keyboardSeek = false
			b.mouseSeek = true
			return seekTo()
		case row == volumeLine:
			b.mouseVolume = true
			return b.dispatch(session.VolumeChanged{Volume: fraction(b.volumeC.Width)})
		}
	case tea.MouseActionMotion:
		switch {
		case b.mouseSeek:
			return seekTo()
		case b.mouseVolume:
			return b.dispatch(session.VolumeChanged{Volume: fraction(b.volumeC.Width)})
		}
	case tea.MouseActionRelease:
		b.mouseVolume = false
		if b.mouseSeek {
			b.mouseSeek = false
			return tea.Batch(seekTo(), b.dispatch(session.SeekEnded{}))
		}
	}

	return nil
}

func (b *statefulBubble) submit(source string) tea.Cmd {
	if source != "" {
		if err := query.Remember(source, 1); err != nil {
			log.Warnf("remember source: %v", err)
		}
	}

	b.saveProgress()
	b.keyboardSeek, b.mouseSeek, b.mouseVolume = false, false, false

	cmd := b.dispatch(session.SourceChanged{Source: source})
	if b.controller.Snapshot().SessionID != "" {
		return tea.Batch(cmd, b.focus(controlsState))
	}

	return cmd
}

// dispatch hands msg to the controller and reacts to what changed.
func (b *statefulBubble) dispatch(msg any) tea.Cmd {
	b.controller.Dispatch(msg)
	snapshot := b.controller.Snapshot()

	b.recordHistory(snapshot)
	return b.notifyFault(snapshot)
}

func (b *statefulBubble) notifyFault(snapshot session.Snapshot) tea.Cmd {
	previous, hadFault := b.lastFault.Get()
	b.lastFault = snapshot.Fault

	fault, ok := snapshot.Fault.Get()
	if !ok || (hadFault && previous.Error() == fault.Error()) {
		return nil
	}

	return ui.Notify(fault.Error())
}

// recordHistory saves a session once its duration is known.
func (b *statefulBubble) recordHistory(snapshot session.Snapshot) {
	if snapshot.SessionID == "" || snapshot.SessionID == b.savedSession || snapshot.Duration == 0 && !snapshot.Live {
		return
	}

	b.savedSession = snapshot.SessionID
	if !viper.GetBool(hkey.HistorySave) {
		return
	}

	if err := history.Save(snapshot.Source, snapshot.Duration, 0, snapshot.Live); err != nil {
		log.Warnf("save history: %v", err)
	}
}

// saveProgress records how far the current session got.
func (b *statefulBubble) saveProgress() {
	snapshot := b.controller.Snapshot()
	if snapshot.SessionID == "" || snapshot.SessionID != b.savedSession || !viper.GetBool(hkey.HistorySave) {
		return
	}

	if err := history.Save(snapshot.Source, snapshot.Duration, snapshot.CurrentTime, snapshot.Live); err != nil {
		log.Warnf("save history: %v", err)
	}
}

func (b *statefulBubble) quit() tea.Cmd {
	b.saveProgress()
	b.controller.Close()
	b.stop()
	return tea.Quit
}

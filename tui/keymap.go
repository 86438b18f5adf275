package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/hlsplay/hlsplay/style"
)

// statefulKeymap holds every binding; help() picks the ones that apply to the focused part.
type statefulKeymap struct {
	state state

	quit, forceQuit,
	load, acceptSuggestion,
	focusForm, focusControls,
	playPause,
	seekBackward, seekForward,
	volumeUp, volumeDown, mute,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

func newStatefulKeymap() *statefulKeymap {
	return &statefulKeymap{
		quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		forceQuit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+d"),
			key.WithHelp("ctrl+c", "quit"),
		),
		load: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp(style.Fg(style.Peach)("enter"), style.Fg(style.Peach)("load")),
		),
		acceptSuggestion: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "accept suggestion"),
		),
		focusForm: key.NewBinding(
			key.WithKeys("tab", "/", "i"),
			key.WithHelp("tab", "edit source"),
		),
		focusControls: key.NewBinding(
			key.WithKeys("esc", "tab"),
			key.WithHelp("esc", "controls"),
		),
		playPause: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "play/pause"),
		),
		seekBackward: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "rewind"),
		),
		seekForward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "forward"),
		),
		volumeUp: key.NewBinding(
			key.WithKeys("+", "=", "up", "k"),
			key.WithHelp("+", "volume up"),
		),
		volumeDown: key.NewBinding(
			key.WithKeys("-", "down", "j"),
			key.WithHelp("-", "volume down"),
		),
		mute: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mute"),
		),
		showHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k *statefulKeymap) help() ([]key.Binding, []key.Binding) {
	h := func(bindings ...key.Binding) []key.Binding {
		return bindings
	}

	switch k.state {
	case formState:
		return h(k.load, k.focusControls, k.forceQuit),
			h(k.load, k.acceptSuggestion, k.focusControls, k.forceQuit)
	case controlsState:
		return h(k.playPause, k.seekBackward, k.seekForward, k.mute, k.focusForm, k.showHelp),
			h(k.playPause, k.seekBackward, k.seekForward, k.volumeUp, k.volumeDown, k.mute, k.focusForm, k.quit)
	default:
		return h(), h()
	}
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

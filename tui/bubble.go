package tui

import (
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hlsplay/hlsplay/engine"
	"github.com/hlsplay/hlsplay/form"
	"github.com/hlsplay/hlsplay/internal/ui"
	"github.com/hlsplay/hlsplay/key"
	"github.com/hlsplay/hlsplay/player"
	"github.com/hlsplay/hlsplay/query"
	"github.com/hlsplay/hlsplay/session"
	"github.com/hlsplay/hlsplay/style"
	"github.com/hlsplay/hlsplay/util"
	"github.com/samber/mo"
	"github.com/spf13/viper"
)

var terminalSize = util.TerminalSize

// eventBuffer bounds how many engine and element messages can wait for the loop.
const eventBuffer = 256

type statefulBubble struct {
	state  state
	keymap *statefulKeymap

	// components
	formC   form.Model
	seekC   progress.Model
	volumeC progress.Model
	helpC   help.Model

	controller *session.Controller

	// events carries engine and element messages into the update loop
	events chan tea.Msg
	// done is closed when the loop stops draining events
	done     chan struct{}
	stopOnce sync.Once

	// seekGeneration identifies the latest keyboard seek; older idle ticks are ignored
	seekGeneration int
	keyboardSeek   bool
	mouseSeek      bool
	mouseVolume    bool

	lastFault    mo.Option[session.Fault]
	savedSession string

	width, height int
	notifier      *ui.Model

	options *Options
}

func newBubble(options *Options, element player.Element, newEngine engine.Factory) *statefulBubble {
	keymap := newStatefulKeymap()

	bubble := &statefulBubble{
		state:    formState,
		keymap:   keymap,
		formC:    form.New(viper.GetString(key.TUIPrompt), query.Suggest),
		seekC:    progress.New(progress.WithSolidFill(string(style.AccentColor)), progress.WithoutPercentage()),
		volumeC:  progress.New(progress.WithSolidFill(string(style.SecondaryColor)), progress.WithoutPercentage()),
		helpC:    help.New(),
		events:   make(chan tea.Msg, eventBuffer),
		done:     make(chan struct{}),
		notifier: &ui.Model{},
		options:  options,
	}

	bubble.controller = session.New(
		element,
		newEngine,
		bubble.enqueue,
		session.WithAudio(options.Volume, options.Muted),
	)

	bubble.setState(formState)

	// the first frame is drawn before any tea.WindowSizeMsg arrives
	if width, height, err := terminalSize(); err == nil {
		bubble.resize(width, height)
	}

	return bubble
}

// enqueue is called from engine and element goroutines. Messages are dropped
// once the loop has stopped.
func (b *statefulBubble) enqueue(msg any) {
	select {
	case b.events <- msg:
	case <-b.done:
	}
}

// listen waits for the next queued message. It is re-armed after each delivery.
func (b *statefulBubble) listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-b.events:
			return msg
		case <-b.done:
			return nil
		}
	}
}

func (b *statefulBubble) stop() {
	b.stopOnce.Do(func() {
		close(b.done)
	})
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *statefulBubble) focus(s state) tea.Cmd {
	if b.state == s {
		return nil
	}

	b.setState(s)
	if s == formState {
		return b.formC.Focus()
	}

	b.formC.Blur()
	return nil
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()

	b.width = width - x
	b.height = height - y

	b.helpC.Width = b.width
	b.formC.SetWidth(b.width)

	barWidth := max(b.width-2*labelWidth, minBarWidth)
	b.seekC.Width = barWidth
	b.volumeC.Width = barWidth
}

package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hlsplay/hlsplay/auth"
	"github.com/hlsplay/hlsplay/engine/hls"
	"github.com/hlsplay/hlsplay/history"
	"github.com/hlsplay/hlsplay/key"
	"github.com/hlsplay/hlsplay/network"
	"github.com/hlsplay/hlsplay/player"
	"github.com/hlsplay/hlsplay/util"
	"github.com/spf13/viper"
)

// ErrEmptyHistory is returned when continuing without any played source.
var ErrEmptyHistory = errors.New("history is empty, nothing to continue")

// Options configures a player session.
type Options struct {
	// Source is loaded as soon as the interface starts.
	Source string

	// Continue loads the most recently played source when Source is empty.
	Continue bool

	// Volume is the initial volume, from 0 to 1.
	Volume float64
	Muted  bool
}

// Run starts mpv and the Bubble Tea loop, and blocks until the user quits.
func Run(options *Options) error {
	if options.Continue && options.Source == "" {
		latest, err := history.Latest()
		if err != nil {
			return err
		}

		entry, ok := latest.Get()
		if !ok {
			return ErrEmptyHistory
		}

		options.Source = entry.Source
	}

	element := player.NewMPV(player.Options{
		Binary:               viper.GetString(key.PlayerMPV),
		Args:                 viper.GetStringSlice(key.PlayerMPVArgs),
		Volume:               options.Volume,
		Muted:                options.Muted,
		TimeUpdatesPerSecond: viper.GetInt(key.PlayerTimeUpdatesPerSecond),
	})
	defer util.Ignore(element.Close)

	newEngine := hls.Factory(hls.Options{
		Client:  network.Client(),
		Headers: auth.Headers,
	})

	bubble := newBubble(options, element, newEngine)
	defer bubble.controller.Close()

	_, err := tea.NewProgram(bubble, tea.WithAltScreen(), tea.WithMouseCellMotion()).Run()
	bubble.stop()
	return err
}

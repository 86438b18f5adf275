// Package icon renders UI symbols in the variant selected by the icons.variant setting.
package icon

import (
	"github.com/hlsplay/hlsplay/key"
	"github.com/spf13/viper"
)

const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	squares = "squares"
)

// AvailableVariants returns all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, squares}
}

// Icon identifies a UI symbol.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Warn
	Play
	Pause
	Volume
	Muted
)

type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	squares string
}

var icons = map[Icon]*iconDef{
	Success:  {emoji: "✅", nerd: "", plain: "✓", squares: "▣"},
	Fail:     {emoji: "❌", nerd: "", plain: "✗", squares: "▣"},
	Progress: {emoji: "⏳", nerd: "", plain: "…", squares: "▣"},
	Warn:     {emoji: "⚠️", nerd: "", plain: "!", squares: "▣"},
	Play:     {emoji: "▶️", nerd: "", plain: "▶", squares: "▶"},
	Pause:    {emoji: "⏸️", nerd: "", plain: "⏸", squares: "■"},
	Volume:   {emoji: "🔊", nerd: "", plain: "vol", squares: "◧"},
	Muted:    {emoji: "🔇", nerd: "", plain: "mute", squares: "□"},
}

func (d *iconDef) get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case squares:
		return d.squares
	default:
		return ""
	}
}

// Get returns the rendered string for an icon in the configured variant.
func Get(i Icon) string {
	if d, ok := icons[i]; ok {
		return d.get()
	}
	return ""
}

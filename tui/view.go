package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hlsplay/hlsplay/icon"
	"github.com/hlsplay/hlsplay/session"
	"github.com/hlsplay/hlsplay/style"
	"github.com/hlsplay/hlsplay/util"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"
	"github.com/samber/lo"
)

var paddingStyle = lipgloss.NewStyle().Padding(1, 2)

// Fixed layout, so mouse events can be mapped back onto the bars.
const (
	seekLine    = 8
	volumeLine  = 10
	labelWidth  = 9
	minBarWidth = 10
)

func (b *statefulBubble) View() string {
	snapshot := b.controller.Snapshot()

	lines := []string{
		b.viewTitle(snapshot),
		"",
		b.formC.View(),
		b.formC.SuggestionView(),
		"",
		b.viewStatus(snapshot),
		b.viewFault(snapshot),
		"",
		b.viewSeek(snapshot),
		"",
		b.viewVolume(snapshot),
	}

	return b.notifier.View(b.renderLines(true, lines))
}

func (b *statefulBubble) viewTitle(snapshot session.Snapshot) string {
	title := style.DimTitle("Source")
	if b.state == controlsState {
		title = style.Title("Player")
	}

	tag := style.Tag(style.Base, style.Overlay)(snapshot.Phase.String())
	if snapshot.Live {
		tag += " " + style.Tag(style.Base, style.Red)("live")
	}

	return title + " " + tag
}

func (b *statefulBubble) viewStatus(snapshot session.Snapshot) string {
	var status string

	switch snapshot.Phase {
	case session.Idle:
		status = style.Faint("Enter an HLS source and press enter")
	case session.Attaching, session.Loading:
		status = icon.Get(icon.Progress) + " " + util.Capitalize(snapshot.Phase.String()) + " " + style.Fg(style.Mauve)(snapshot.Source)
	default:
		glyph := lo.Ternary(snapshot.Playing, icon.Get(icon.Play), icon.Get(icon.Pause))
		status = glyph + " " + style.Fg(style.Mauve)(snapshot.Source)
		if n := len(snapshot.Levels); n > 1 {
			status += style.Faint(fmt.Sprintf("  %d levels", n))
		}
	}

	return b.truncate(status)
}

func (b *statefulBubble) viewFault(snapshot session.Snapshot) string {
	fault, ok := snapshot.Fault.Get()
	if !ok {
		return ""
	}

	return b.truncate(icon.Get(icon.Warn) + " " + style.Fg(style.ErrorColor)(fault.Error()))
}

func (b *statefulBubble) viewSeek(snapshot session.Snapshot) string {
	var percent float64
	if snapshot.Duration > 0 {
		percent = snapshot.CurrentTime / snapshot.Duration
	}

	total := util.FormatClock(snapshot.Duration)
	if snapshot.Live {
		total = "live"
	}

	return label(util.FormatClock(snapshot.CurrentTime)) + b.seekC.ViewAs(percent) + " " + total
}

func (b *statefulBubble) viewVolume(snapshot session.Snapshot) string {
	glyph := icon.Get(icon.Volume)
	percent := fmt.Sprintf("%d%%", int(snapshot.Volume*100+0.5))
	if snapshot.Muted {
		glyph = icon.Get(icon.Muted)
		percent = style.Faint(percent + " muted")
	}

	return label(glyph+" vol") + b.volumeC.ViewAs(snapshot.Volume) + " " + percent
}

func label(s string) string {
	return padding.String(s, labelWidth)
}

func (b *statefulBubble) truncate(s string) string {
	if b.width <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(b.width), "…")
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}

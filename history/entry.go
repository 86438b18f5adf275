package history

import (
	"fmt"
	"time"

	"github.com/hlsplay/hlsplay/util"
)

// Entry is one played source.
type Entry struct {
	Source   string    `json:"source"`
	Duration float64   `json:"duration"`
	Position float64   `json:"position"`
	Live     bool      `json:"live"`
	PlayedAt time.Time `json:"played_at"`
}

func (e *Entry) String() string {
	if e.Live {
		return fmt.Sprintf("%s (live)", e.Source)
	}

	return fmt.Sprintf("%s %s / %s", e.Source, util.FormatClock(e.Position), util.FormatClock(e.Duration))
}

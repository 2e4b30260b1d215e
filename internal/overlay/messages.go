package overlay

import (
	"math"

	"github.com/ivlev/discoscene/internal/random"
)

// DefaultMessages are the DJ player's teasers. The glyph face is ASCII only.
var DefaultMessages = []string{
	"Need some vibes?",
	"Let's groove!",
	"Hit play, feel the beat!",
	"Music makes it better",
	"Turn up the energy!",
	"Drop the beat!",
}

// Picker chooses one teaser per Interval window and shows it for Show seconds
// at the start of the window. The first window (before Interval) is silent.
type Picker struct {
	Messages []string
	Interval float64
	Show     float64
	Src      random.Source
}

func NewPicker(src random.Source) *Picker {
	return &Picker{
		Messages: DefaultMessages,
		Interval: 6,
		Show:     2,
		Src:      src,
	}
}

// At returns the message visible at time t, if any. Same source, same answer.
func (p *Picker) At(t float64) (string, bool) {
	if len(p.Messages) == 0 || p.Interval <= 0 || t < p.Interval {
		return "", false
	}
	window := math.Floor(t / p.Interval)
	if t-window*p.Interval >= p.Show {
		return "", false
	}
	st := random.Stream{Src: p.Src, Offset: uint64(window)}
	return p.Messages[st.Intn(len(p.Messages))], true
}

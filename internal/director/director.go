package director

import (
	"fmt"
	"math"
	"sort"

	"github.com/ivlev/discoscene/internal/scene"
)

// Director generates page tours from the page layout
type Director struct {
	Viewport Viewport
	Sections []Section
	MinDwell float64 // Minimum time per section (seconds)
	MaxDwell float64 // Maximum time per section (seconds)
}

// NewDirector creates a new Director with default settings
func NewDirector(viewportWidth, viewportHeight int) *Director {
	return &Director{
		Viewport: Viewport{Width: viewportWidth, Height: viewportHeight},
		Sections: DefaultSections(),
		MinDwell: 1.0,
		MaxDwell: 4.0,
	}
}

// PageHeight is the document height in pixels.
func (d *Director) PageHeight() int {
	total := 0.0
	for _, s := range d.Sections {
		total += s.Height
	}
	return int(math.Round(total * float64(d.Viewport.Height)))
}

// SectionOffset returns window.scrollY at which the section's top reaches the
// top of the viewport, clamped to the scrollable range.
func (d *Director) SectionOffset(id string) (int, error) {
	top := 0.0
	for _, s := range d.Sections {
		if s.ID == id {
			return d.clamp(int(math.Round(top * float64(d.Viewport.Height)))), nil
		}
		top += s.Height
	}
	return 0, fmt.Errorf("unknown section: %s", id)
}

func (d *Director) maxScroll() int {
	m := d.PageHeight() - d.Viewport.Height
	if m < 0 {
		return 0
	}
	return m
}

func (d *Director) clamp(scroll int) int {
	if scroll < 0 {
		return 0
	}
	if m := d.maxScroll(); scroll > m {
		return m
	}
	return scroll
}

// GenerateScenario builds a tour: start at the top, linger on the disco ball,
// visit the remaining sections, and glide back to the ball for the finale.
func (d *Director) GenerateScenario(totalDuration float64) (*Scenario, error) {
	if d.Viewport.Height <= 0 || d.Viewport.Width <= 0 {
		return nil, fmt.Errorf("invalid viewport %dx%d", d.Viewport.Width, d.Viewport.Height)
	}
	if len(d.Sections) == 0 {
		return nil, fmt.Errorf("no sections")
	}
	if totalDuration <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %f", totalDuration)
	}

	stops := d.tourStops()
	dwellTime := d.calculateDwellTime(totalDuration, len(stops))
	keyframes := d.generateKeyframes(stops, dwellTime, totalDuration)

	return &Scenario{
		Version:    "1.0",
		Viewport:   d.Viewport,
		PageHeight: d.PageHeight(),
		Duration:   totalDuration,
		Keyframes:  keyframes,
	}, nil
}

// tourStops lists sections in document order, then returns to the disco section.
func (d *Director) tourStops() []string {
	var stops []string
	for _, s := range d.Sections {
		stops = append(stops, s.ID)
	}
	for _, s := range d.Sections {
		if s.ID == "disco" {
			stops = append(stops, "disco")
			break
		}
	}
	return stops
}

// calculateDwellTime determines how long to stay on each section
func (d *Director) calculateDwellTime(totalDuration float64, stopCount int) float64 {
	// Reserve time for the intro hold at the top of the page
	introDuration := 1.0
	availableDuration := totalDuration - introDuration

	if availableDuration <= 0 {
		availableDuration = totalDuration
	}

	dwellTime := availableDuration / float64(stopCount)

	// Clamp to min/max
	if dwellTime < d.MinDwell {
		dwellTime = d.MinDwell
	}
	if dwellTime > d.MaxDwell {
		dwellTime = d.MaxDwell
	}

	return dwellTime
}

// generateKeyframes creates keyframes for the scroll path
func (d *Director) generateKeyframes(stops []string, dwellTime, totalDuration float64) []Keyframe {
	keyframes := []Keyframe{{Time: 0, Focus: "home", Scroll: 0}}

	currentTime := 1.0
	for _, id := range stops {
		offset, err := d.SectionOffset(id)
		if err != nil {
			continue
		}
		kf := Keyframe{Time: currentTime, Focus: id, Scroll: offset}
		if id == "disco" {
			// Hover over the card ring while the ball is on screen
			kf.Pointer = &scene.Point{
				X: float64(d.Viewport.Width) * 0.72,
				Y: float64(d.Viewport.Height) * 0.5,
			}
		}
		keyframes = append(keyframes, kf)
		currentTime += dwellTime
	}

	// Hold the last position until the end
	last := keyframes[len(keyframes)-1]
	if last.Time < totalDuration {
		last.Time = totalDuration
		keyframes = append(keyframes, last)
	}

	// Tours longer than the requested duration are compressed to fit
	if end := keyframes[len(keyframes)-1].Time; end > totalDuration {
		scale := totalDuration / end
		for i := range keyframes {
			keyframes[i].Time *= scale
		}
	}

	sort.SliceStable(keyframes, func(i, j int) bool {
		return keyframes[i].Time < keyframes[j].Time
	})

	return keyframes
}

// Validate checks a scenario loaded from disk before any frame is simulated.
func (s *Scenario) Validate() error {
	if s.Viewport.Width <= 0 || s.Viewport.Height <= 0 {
		return fmt.Errorf("scenario: invalid viewport %dx%d", s.Viewport.Width, s.Viewport.Height)
	}
	if s.Duration <= 0 {
		return fmt.Errorf("scenario: duration must be positive")
	}
	if len(s.Keyframes) == 0 {
		return fmt.Errorf("scenario: no keyframes")
	}
	for i, kf := range s.Keyframes {
		if kf.Scroll < 0 {
			return fmt.Errorf("scenario: keyframe %d has negative scroll %d", i, kf.Scroll)
		}
		if i > 0 && kf.Time < s.Keyframes[i-1].Time {
			return fmt.Errorf("scenario: keyframe %d goes back in time", i)
		}
	}
	return nil
}

// Retime returns a copy of the scenario stretched or compressed to last
// duration seconds. Scroll offsets and pointers are kept as they are.
func (s *Scenario) Retime(duration float64) *Scenario {
	out := *s
	out.Keyframes = make([]Keyframe, len(s.Keyframes))
	copy(out.Keyframes, s.Keyframes)
	if s.Duration <= 0 || duration <= 0 {
		return &out
	}
	scale := duration / s.Duration
	for i := range out.Keyframes {
		out.Keyframes[i].Time *= scale
	}
	out.Duration = duration
	return &out
}

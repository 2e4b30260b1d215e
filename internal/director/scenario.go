package director

import "github.com/ivlev/discoscene/internal/scene"

// Scenario is a scripted page session: how the visitor scrolls and where the
// pointer is over time.
type Scenario struct {
	Version    string     `yaml:"version"`
	Viewport   Viewport   `yaml:"viewport"`
	PageHeight int        `yaml:"page_height"` // Total scrollable height in pixels
	Duration   float64    `yaml:"duration"`    // Total duration in seconds
	Keyframes  []Keyframe `yaml:"keyframes"`
}

// Viewport is the browser window the page is laid out in.
type Viewport struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Keyframe represents the page state at a specific time
type Keyframe struct {
	Time    float64      `yaml:"time"`              // Time offset in seconds
	Focus   string       `yaml:"focus"`             // Section the visitor is looking at
	Scroll  int          `yaml:"scroll"`            // window.scrollY in pixels
	Pointer *scene.Point `yaml:"pointer,omitempty"` // Pointer over the canvas, nil when outside
}

// Section is one block of the page, in document order.
type Section struct {
	ID     string
	Height float64 // in viewport heights
}

// DefaultSections is the layout of the venue page.
func DefaultSections() []Section {
	return []Section{
		{"home", 0.6},
		{"disco", 1.0},
		{"about", 0.8},
		{"events", 1.2},
		{"testimonials", 0.9},
		{"gallery", 0.9},
		{"contact", 0.6},
		{"footer", 0.3},
	}
}

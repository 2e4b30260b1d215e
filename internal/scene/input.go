package scene

import (
	"math"
	"sort"

	"github.com/ivlev/discoscene/internal/carousel"
	"github.com/ivlev/discoscene/internal/mathutil"
)

// Point is a pointer position in screen pixels.
type Point struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// EventKind enumerates pointer transitions.
type EventKind int

const (
	Enter EventKind = iota
	Move
	Leave
)

func (k EventKind) String() string {
	switch k {
	case Enter:
		return "enter"
	case Move:
		return "move"
	case Leave:
		return "leave"
	}
	return "unknown"
}

// Event is one routed pointer event.
type Event struct {
	Kind  EventKind
	ID    string
	Point Point
}

// Interactable is anything the pointer can hover.
type Interactable interface {
	ID() string
	Contains(p Point) bool
}

// Route dispatches a pointer sample over items in one pass. hovered is the set
// from the previous frame; the returned set replaces it. A nil pointer means the
// pointer left the canvas and every hovered item receives Leave.
func Route(hovered []string, pointer *Point, items []Interactable) ([]Event, []string) {
	was := make(map[string]bool, len(hovered))
	for _, id := range hovered {
		was[id] = true
	}

	var events []Event
	var now []string
	if pointer != nil {
		for _, it := range items {
			if !it.Contains(*pointer) {
				continue
			}
			id := it.ID()
			now = append(now, id)
			if was[id] {
				events = append(events, Event{Kind: Move, ID: id, Point: *pointer})
				delete(was, id)
			} else {
				events = append(events, Event{Kind: Enter, ID: id, Point: *pointer})
			}
		}
	}

	left := make([]string, 0, len(was))
	for id := range was {
		left = append(left, id)
	}
	sort.Strings(left)
	var at Point
	if pointer != nil {
		at = *pointer
	}
	for _, id := range left {
		events = append(events, Event{Kind: Leave, ID: id, Point: at})
	}

	return events, now
}

// Projector maps world points to screen pixels.
type Projector interface {
	Project(p mathutil.Vec3) (x, y float64, ok bool)
}

// cardTarget is the screen-space footprint of one visible card.
type cardTarget struct {
	id                     string
	minX, minY, maxX, maxY float64
}

func (c cardTarget) ID() string { return c.id }

func (c cardTarget) Contains(p Point) bool {
	return p.X >= c.minX && p.X <= c.maxX && p.Y >= c.minY && p.Y <= c.maxY
}

// Targets returns the hoverable cards of st. Hidden cards and cards behind the
// camera are not interactable.
func Targets(st SceneState, proj Projector) []Interactable {
	var out []Interactable
	for _, p := range st.Cards {
		if !p.Visible {
			continue
		}
		ct := cardTarget{
			id:   p.Entry.Label,
			minX: math.Inf(1), minY: math.Inf(1),
			maxX: math.Inf(-1), maxY: math.Inf(-1),
		}
		inFront := true
		for _, c := range carousel.Corners(p, carousel.CardSize[0], carousel.CardSize[1]) {
			x, y, ok := proj.Project(c)
			if !ok {
				inFront = false
				break
			}
			ct.minX = math.Min(ct.minX, x)
			ct.maxX = math.Max(ct.maxX, x)
			ct.minY = math.Min(ct.minY, y)
			ct.maxY = math.Max(ct.maxY, y)
		}
		if inFront {
			out = append(out, ct)
		}
	}
	return out
}

// RouteInput runs the single input pass for a frame and returns the state with
// its hover set updated, together with the events produced.
func RouteInput(st SceneState, pointer *Point, proj Projector) (SceneState, []Event) {
	events, hovered := Route(st.Hovered, pointer, Targets(st, proj))
	st.Hovered = hovered
	return st, events
}

// IsHovered reports whether the card with label id is under the pointer.
func (st SceneState) IsHovered(id string) bool {
	for _, h := range st.Hovered {
		if h == id {
			return true
		}
	}
	return false
}

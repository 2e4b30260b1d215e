package effects

import (
	"fmt"
	"math"
	"strings"

	"github.com/ivlev/discoscene/internal/config"
)

type Effect interface {
	GenerateFilter(params config.FrameParams) string
}

// DefaultEffect darkens the frame edges like the site's post-processing pass.
type DefaultEffect struct{}

func (e *DefaultEffect) GenerateFilter(p config.FrameParams) string {
	var filters []string

	if v := vignetteFilter(p.Vignette); v != "" {
		filters = append(filters, v)
	}

	filters = append(filters, fmt.Sprintf("scale=%d:%d", p.Width, p.Height), "format=yuv420p")
	return strings.Join(filters, ",")
}

// vignetteFilter maps a 0..1 strength onto ffmpeg's lens angle (0..PI/2).
func vignetteFilter(strength float64) string {
	if strength <= 0 {
		return ""
	}
	if strength > 1 {
		strength = 1
	}
	return fmt.Sprintf("vignette=angle=%.4f", strength*math.Pi/2)
}

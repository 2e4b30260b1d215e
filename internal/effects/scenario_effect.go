package effects

import (
	"fmt"
	"strings"

	"github.com/ivlev/discoscene/internal/config"
	"github.com/ivlev/discoscene/internal/director"
	"github.com/ivlev/discoscene/internal/renderer"
	"github.com/ivlev/discoscene/internal/system"
)

// ScenarioEffect burns the scripted scroll position into debug renders
type ScenarioEffect struct {
	Scenario *director.Scenario
}

// NewScenarioEffect creates a new ScenarioEffect
func NewScenarioEffect(scenario *director.Scenario) *ScenarioEffect {
	return &ScenarioEffect{
		Scenario: scenario,
	}
}

// GenerateFilter generates FFmpeg filter chain for the whole stream
func (e *ScenarioEffect) GenerateFilter(p config.FrameParams) string {
	var filters []string
	if v := vignetteFilter(p.Vignette); v != "" {
		filters = append(filters, v)
	}

	if p.Debug && e.Scenario != nil && system.CheckFilterSupport("drawtext") {
		expr := p.ScrollExpr
		if expr == "" {
			expr = renderer.GenerateScrollExpression(e.Scenario.Keyframes, p.FPS)
		}
		textFilter := fmt.Sprintf(
			"drawtext=text='Time %%{pts\\:hms} | Scroll %%{eif\\:%s\\:d}px':x=10:y=10:fontsize=24:fontcolor=yellow:box=1:boxcolor=black@0.5",
			expr)
		filters = append(filters, textFilter)
	}

	filters = append(filters, fmt.Sprintf("scale=%d:%d", p.Width, p.Height), "format=yuv420p")
	return strings.Join(filters, ",")
}

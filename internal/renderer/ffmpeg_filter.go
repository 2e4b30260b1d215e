package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ivlev/discoscene/internal/director"
)

// GenerateScrollExpression creates a piecewise FFmpeg expression of the
// scripted scroll offset, indexed by output frame number n. It reproduces
// InterpolateKeyframes(...).ScrollPx() for t = n/fps, easing included, so the
// debug overlay prints the scroll the scene was driven by. Commas are escaped
// for use inside a filter argument.
func GenerateScrollExpression(keyframes []director.Keyframe, fps int) string {
	if len(keyframes) == 0 {
		return "0"
	}
	if len(keyframes) == 1 {
		return fmt.Sprintf("%d", max(keyframes[0].Scroll, 0))
	}
	if fps <= 0 {
		fps = 30
	}

	t := fmt.Sprintf("n/%d", fps)
	last := keyframes[len(keyframes)-1]

	// Built from the last segment outwards; empty segments are never entered.
	expr := strconv.Itoa(last.Scroll)
	for i := len(keyframes) - 2; i >= 0; i-- {
		a, b := keyframes[i], keyframes[i+1]
		if b.Time <= a.Time {
			continue
		}
		u := fmt.Sprintf("((%s-%s)/%s)", t, num(a.Time), num(b.Time-a.Time))
		v := fmt.Sprintf("(-2*%s+2)", u)
		ease := fmt.Sprintf("if(lt(%s,0.5),4*%s*%s*%s,1-(%s*%s*%s)/2)", u, u, u, u, v, v, v)
		expr = fmt.Sprintf("if(lt(%s,%s),%d+(%d)*%s,%s)",
			t, num(b.Time), a.Scroll, b.Scroll-a.Scroll, ease, expr)
	}
	first := keyframes[0]
	expr = fmt.Sprintf("max(0,round(if(lte(%s,%s),%d,%s)))", t, num(first.Time), first.Scroll, expr)

	return strings.ReplaceAll(expr, ",", "\\,")
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

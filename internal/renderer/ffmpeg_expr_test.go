package renderer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// parseFFmpegExpr compiles the subset of the ffmpeg expression language that
// GenerateScrollExpression emits into a function of the frame number n.
// Branches of if() are evaluated lazily, as ffmpeg does.
func parseFFmpegExpr(escaped string) (func(n float64) float64, error) {
	p := &exprParser{src: strings.ReplaceAll(escaped, "\\,", ",")}
	f, err := p.sum()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("trailing input at %d: %q", p.pos, p.src[p.pos:])
	}
	return f, nil
}

type exprFunc = func(n float64) float64

type exprParser struct {
	src string
	pos int
}

func (p *exprParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *exprParser) expect(c byte) error {
	if p.peek() != c {
		return fmt.Errorf("expected %q at %d", c, p.pos)
	}
	p.pos++
	return nil
}

func (p *exprParser) sum() (exprFunc, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		l := left
		if op == '+' {
			left = func(n float64) float64 { return l(n) + right(n) }
		} else {
			left = func(n float64) float64 { return l(n) - right(n) }
		}
	}
}

func (p *exprParser) term() (exprFunc, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		l := left
		if op == '*' {
			left = func(n float64) float64 { return l(n) * right(n) }
		} else {
			left = func(n float64) float64 { return l(n) / right(n) }
		}
	}
}

func (p *exprParser) factor() (exprFunc, error) {
	if p.peek() == '-' {
		p.pos++
		f, err := p.factor()
		if err != nil {
			return nil, err
		}
		return func(n float64) float64 { return -f(n) }, nil
	}
	return p.primary()
}

func (p *exprParser) primary() (exprFunc, error) {
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		f, err := p.sum()
		if err != nil {
			return nil, err
		}
		return f, p.expect(')')
	case c >= '0' && c <= '9' || c == '.':
		start := p.pos
		for c := p.peek(); c >= '0' && c <= '9' || c == '.'; c = p.peek() {
			p.pos++
		}
		v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
		if err != nil {
			return nil, err
		}
		return func(float64) float64 { return v }, nil
	case c >= 'a' && c <= 'z':
		start := p.pos
		for c := p.peek(); c >= 'a' && c <= 'z'; c = p.peek() {
			p.pos++
		}
		name := p.src[start:p.pos]
		if name == "n" {
			return func(n float64) float64 { return n }, nil
		}
		args, err := p.args()
		if err != nil {
			return nil, err
		}
		return call(name, args)
	}
	return nil, fmt.Errorf("unexpected %q at %d", c, p.pos)
}

func (p *exprParser) args() ([]exprFunc, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var out []exprFunc
	for {
		f, err := p.sum()
		if err != nil {
			return nil, err
		}
		out = append(out, f)
		if p.peek() == ',' {
			p.pos++
			continue
		}
		return out, p.expect(')')
	}
}

func call(name string, a []exprFunc) (exprFunc, error) {
	arity := map[string]int{"if": 3, "lt": 2, "lte": 2, "max": 2, "round": 1}
	want, ok := arity[name]
	if !ok {
		return nil, fmt.Errorf("unknown function %s", name)
	}
	if len(a) != want {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", name, want, len(a))
	}
	switch name {
	case "if":
		return func(n float64) float64 {
			if a[0](n) != 0 {
				return a[1](n)
			}
			return a[2](n)
		}, nil
	case "lt":
		return func(n float64) float64 { return b2f(a[0](n) < a[1](n)) }, nil
	case "lte":
		return func(n float64) float64 { return b2f(a[0](n) <= a[1](n)) }, nil
	case "max":
		return func(n float64) float64 { return math.Max(a[0](n), a[1](n)) }, nil
	default:
		return func(n float64) float64 { return math.Round(a[0](n)) }, nil
	}
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

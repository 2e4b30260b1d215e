package raster

import (
	"image/color"
	"math"

	"github.com/ivlev/discoscene/internal/mathutil"
)

// PointLight is a colored light with a finite reach. Spotlights are treated as
// point lights; their cone is wide enough to cover the ball.
type PointLight struct {
	Position  mathutil.Vec3
	Color     color.RGBA
	Intensity float64
	Distance  float64 // 0 = unlimited
}

// Fog blends surfaces toward Color between Near and Far.
type Fog struct {
	Color     color.RGBA
	Near, Far float64
}

// Factor returns 0 (clear) .. 1 (fully fogged) for a view distance.
func (f Fog) Factor(dist float64) float64 {
	if f.Far <= f.Near {
		return 0
	}
	k := (dist - f.Near) / (f.Far - f.Near)
	return math.Max(0, math.Min(1, k))
}

// Apply mixes c toward the fog color.
func (f Fog) Apply(c color.RGBA, dist float64) color.RGBA {
	k := f.Factor(dist)
	if k == 0 {
		return c
	}
	mix := func(a, b uint8) uint8 {
		return clamp255(float64(a)*(1-k) + float64(b)*k)
	}
	return color.RGBA{mix(c.R, f.Color.R), mix(c.G, f.Color.G), mix(c.B, f.Color.B), c.A}
}

// LightConfig holds the static lighting of the club.
type LightConfig struct {
	Background  color.RGBA
	SkyColor    color.RGBA
	GroundColor color.RGBA
	Ambient     float64
	Hemi        float64
	Diffuse     float64
	SpecInt     float64
	SpecPow     float64
	Exposure    float64
	InvGamma    float64
	OrbitLight  float64 // intensity of each orbiting colored light
	OrbitReach  float64
	Spots       []PointLight
	Fog         Fog
}

// DefaultLightConfig returns the lighting of the live site: a dim ambient and
// hemisphere fill, a white key from above and magenta/cyan side spots.
func DefaultLightConfig() LightConfig {
	bg := color.RGBA{0x0a, 0x05, 0x14, 0xff}
	return LightConfig{
		Background:  bg,
		SkyColor:    color.RGBA{0x4a, 0x0e, 0x4e, 0xff},
		GroundColor: bg,
		Ambient:     0.05,
		Hemi:        0.1,
		Diffuse:     0.6,
		SpecInt:     1.4,
		SpecPow:     24,
		Exposure:    1.1,
		InvGamma:    1.0 / 2.2,
		OrbitLight:  3,
		OrbitReach:  15,
		Spots: []PointLight{
			{Position: mathutil.Vec3{0, 8, 0}, Color: color.RGBA{0xff, 0xff, 0xff, 0xff}, Intensity: 0.1},
			{Position: mathutil.Vec3{6, 3, 0}, Color: color.RGBA{0xff, 0x00, 0xff, 0xff}, Intensity: 0.45},
			{Position: mathutil.Vec3{-6, 3, 0}, Color: color.RGBA{0x00, 0xff, 0xff, 0xff}, Intensity: 0.45},
		},
		Fog: Fog{Color: bg, Near: 15, Far: 45},
	}
}

// attenuation follows the physically based falloff with a smooth cutoff at
// reach (decay 2).
func attenuation(d, reach float64) float64 {
	att := 1 / math.Max(d*d, 0.01)
	if reach > 0 {
		r := d / reach
		w := 1 - r*r*r*r
		if w <= 0 {
			return 0
		}
		att *= w * w
	}
	return att
}

// ShadeFacet computes the flat-shaded color of one facet with its center at p
// and normal n, seen from eye. Mirror facets take the light color in their
// specular term, which gives the ball its colored glints.
func (lc *LightConfig) ShadeFacet(n, p, eye mathutil.Vec3, base color.RGBA, lights []PointLight) color.RGBA {
	lr, lg, lb := srgbToLinear[base.R], srgbToLinear[base.G], srgbToLinear[base.B]

	// Hemisphere fill
	hemi := n[1]*0.5 + 0.5
	hr := lc.Ambient + lc.Hemi*(srgbToLinear[lc.SkyColor.R]*hemi+srgbToLinear[lc.GroundColor.R]*(1-hemi))
	hg := lc.Ambient + lc.Hemi*(srgbToLinear[lc.SkyColor.G]*hemi+srgbToLinear[lc.GroundColor.G]*(1-hemi))
	hb := lc.Ambient + lc.Hemi*(srgbToLinear[lc.SkyColor.B]*hemi+srgbToLinear[lc.GroundColor.B]*(1-hemi))

	dr, dg, db := hr, hg, hb
	var sr, sg, sb float64

	view, ok := eye.Sub(p).Unit()
	if !ok {
		view = n
	}

	for _, l := range lights {
		toLight := l.Position.Sub(p)
		d := toLight.Len()
		ld, ok := toLight.Unit()
		if !ok {
			continue
		}
		att := l.Intensity * attenuation(d, l.Distance)
		if att <= 0 {
			continue
		}
		cr, cg, cb := srgbToLinear[l.Color.R], srgbToLinear[l.Color.G], srgbToLinear[l.Color.B]

		ndl := n.Dot(ld)
		if ndl > 0 {
			k := ndl * lc.Diffuse * att
			dr += cr * k
			dg += cg * k
			db += cb * k
		}

		// Blinn-Phong specular
		h, ok := ld.Add(view).Unit()
		if !ok {
			continue
		}
		ndh := n.Dot(h)
		if ndh <= 0 {
			continue
		}
		spec := math.Pow(ndh, lc.SpecPow) * lc.SpecInt * att
		sr += cr * spec
		sg += cg * spec
		sb += cb * spec
	}

	return color.RGBA{
		R: lc.encode(lr*dr + sr),
		G: lc.encode(lg*dg + sg),
		B: lc.encode(lb*db + sb),
		A: base.A,
	}
}

// Emissive returns base lit only by itself, for self-illuminated surfaces.
func (lc *LightConfig) Emissive(base color.RGBA, strength float64) color.RGBA {
	return color.RGBA{
		R: lc.encode(srgbToLinear[base.R] * strength),
		G: lc.encode(srgbToLinear[base.G] * strength),
		B: lc.encode(srgbToLinear[base.B] * strength),
		A: base.A,
	}
}

func (lc *LightConfig) encode(linear float64) uint8 {
	return clamp255(math.Pow(ACESTonemap(linear*lc.Exposure), lc.InvGamma) * 255)
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	if x <= 0 {
		return 0
	}
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

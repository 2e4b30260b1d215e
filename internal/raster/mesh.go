package raster

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	"github.com/ivlev/discoscene/internal/mathutil"
)

// Mesh is an indexed triangle list in model space.
type Mesh struct {
	Vertices []mathutil.Vec3
	Faces    [][3]int
}

// NewMirrorBall tessellates a unit sphere into lat×lon flat facets. Pole rows
// collapse into triangles.
func NewMirrorBall(lat, lon int) *Mesh {
	if lat < 2 {
		lat = 2
	}
	if lon < 3 {
		lon = 3
	}
	m := &Mesh{}
	for i := 0; i <= lat; i++ {
		theta := math.Pi * float64(i) / float64(lat)
		st, ct := math.Sincos(theta)
		for j := 0; j < lon; j++ {
			phi := mathutil.TwoPi * float64(j) / float64(lon)
			sp, cp := math.Sincos(phi)
			m.Vertices = append(m.Vertices, mathutil.Vec3{st * cp, ct, st * sp})
		}
	}
	idx := func(i, j int) int { return i*lon + j%lon }
	for i := 0; i < lat; i++ {
		for j := 0; j < lon; j++ {
			a, b, c, d := idx(i, j), idx(i+1, j), idx(i+1, j+1), idx(i, j+1)
			if i != 0 {
				m.Faces = append(m.Faces, [3]int{a, b, d})
			}
			if i != lat-1 {
				m.Faces = append(m.Faces, [3]int{b, c, d})
			}
		}
	}
	return m
}

// BallAsset is the focal mesh, built in the background the way the site
// streams its model. It implements scene.Asset.
type BallAsset struct {
	lat, lon int
	once     sync.Once
	ready    atomic.Bool
	done     chan struct{}
	mesh     *Mesh
}

func NewBallAsset(lat, lon int) *BallAsset {
	return &BallAsset{lat: lat, lon: lon, done: make(chan struct{})}
}

// Load starts building the mesh. Calling it again has no effect.
func (b *BallAsset) Load() {
	b.once.Do(func() {
		go func() {
			b.mesh = NewMirrorBall(b.lat, b.lon)
			b.ready.Store(true)
			close(b.done)
		}()
	})
}

func (b *BallAsset) Ready() bool {
	return b.ready.Load()
}

// Mesh returns nil until the asset is ready.
func (b *BallAsset) Mesh() *Mesh {
	if !b.ready.Load() {
		return nil
	}
	return b.mesh
}

// Wait blocks until the mesh is built or ctx is done.
func (b *BallAsset) Wait(ctx context.Context) error {
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// ImagePool переиспользует кадры *image.RGBA одного размера, чтобы рендер
// не создавал мусор на каждом кадре.
type ImagePool struct {
	mu    sync.RWMutex
	pools map[image.Rectangle]*sync.Pool

	allocated atomic.Int64
	reused    atomic.Int64
}

var globalPool = NewImagePool()

func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Rectangle]*sync.Pool)}
}

// GetImage возвращает кадр из глобального пула.
func GetImage(rect image.Rectangle) *image.RGBA {
	return globalPool.Get(rect)
}

// PutImage возвращает кадр в глобальный пул.
func PutImage(img *image.RGBA) {
	globalPool.Put(img)
}

// Get returns a frame of the given size. Reused frames keep their old pixels;
// callers clear them.
func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	p.mu.RLock()
	pool, exists := p.pools[rect]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Double check
		pool, exists = p.pools[rect]
		if !exists {
			pool = &sync.Pool{}
			p.pools[rect] = pool
		}
		p.mu.Unlock()
	}

	if img, ok := pool.Get().(*image.RGBA); ok {
		p.reused.Add(1)
		return img
	}
	p.allocated.Add(1)
	return image.NewRGBA(rect)
}

func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil {
		return
	}
	p.mu.RLock()
	pool, exists := p.pools[img.Rect]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}

// Stats reports how many frames were allocated and how many were reused.
func (p *ImagePool) Stats() (allocated, reused int64) {
	return p.allocated.Load(), p.reused.Load()
}

// PoolStats reports the global pool counters.
func PoolStats() (allocated, reused int64) {
	return globalPool.Stats()
}

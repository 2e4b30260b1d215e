package video

import (
	"fmt"
	"image"
	"os"

	"github.com/HugoSmits86/nativewebp"
)

// WritePoster saves a single frame as a lossless WebP still.
func WritePoster(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create poster: %w", err)
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("encode poster: %w", err)
	}
	return f.Close()
}

// WritePreview saves frames as a looping animated WebP, each shown for
// delayMs milliseconds.
func WritePreview(path string, frames []image.Image, delayMs uint) error {
	if len(frames) == 0 {
		return fmt.Errorf("preview has no frames")
	}
	ani := &nativewebp.Animation{
		Images:    frames,
		Durations: make([]uint, len(frames)),
		Disposals: make([]uint, len(frames)),
		LoopCount: 0,
	}
	for i := range ani.Durations {
		ani.Durations[i] = delayMs
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	if err := nativewebp.EncodeAll(f, ani, nil); err != nil {
		f.Close()
		return fmt.Errorf("encode preview: %w", err)
	}
	return f.Close()
}

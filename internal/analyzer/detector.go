// Package analyzer finds where the artwork sits on a flyer page so the
// backdrop can be cropped to it instead of showing empty print margins.
package analyzer

import (
	"fmt"
	"image"
)

// Region is a connected area of strong local contrast.
type Region struct {
	Rect image.Rectangle
	// Density is the share of edge pixels inside Rect, 0..1.
	Density float64
}

// Detector is the interface for image analysis strategies
type Detector interface {
	Detect(img image.Image) ([]Region, error)
}

// NopDetector reports the whole image as one region.
type NopDetector struct{}

func (NopDetector) Detect(img image.Image) ([]Region, error) {
	return []Region{{Rect: img.Bounds(), Density: 1}}, nil
}

// NewDetector creates a detector based on the specified variant
func NewDetector(variant string) (Detector, error) {
	switch variant {
	case "contrast", "":
		return NewContrastDetector(), nil
	case "none":
		return NopDetector{}, nil
	default:
		return nil, fmt.Errorf("unknown detector variant: %s", variant)
	}
}

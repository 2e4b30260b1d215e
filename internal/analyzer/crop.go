package analyzer

import "image"

// ContentBounds is the union of all detected regions, padded by pad (a
// fraction of the larger side) and clipped to the image. Without any region
// the full bounds are returned.
func ContentBounds(det Detector, img image.Image, pad float64) (image.Rectangle, error) {
	b := img.Bounds()
	regions, err := det.Detect(img)
	if err != nil {
		return b, err
	}
	if len(regions) == 0 {
		return b, nil
	}

	u := regions[0].Rect
	for _, r := range regions[1:] {
		u = u.Union(r.Rect)
	}
	p := int(pad * float64(max(b.Dx(), b.Dy())))
	return u.Inset(-p).Intersect(b), nil
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// CropToContent returns img restricted to its content bounds. Images that
// cannot be sliced are returned unchanged.
func CropToContent(det Detector, img image.Image, pad float64) (image.Image, image.Rectangle, error) {
	r, err := ContentBounds(det, img, pad)
	if err != nil {
		return img, img.Bounds(), err
	}
	si, ok := img.(subImager)
	if !ok || r.Empty() {
		return img, img.Bounds(), nil
	}
	return si.SubImage(r), r, nil
}

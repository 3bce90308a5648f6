package service

import (
	"image"
	"image/color"
	"letterbox/internal/core/domain"
	"math"

	"github.com/disintegration/imaging"
)

var Background = color.NRGBA{R: 0, G: 0, B: 0, A: 255}

// FitPlacement scales src uniformly by min(W/w, H/h) and truncates both axes to whole pixels, so the binding
// axis can land a pixel short of the target edge. Leftover pixels are split with the odd one going to the right
// and bottom.
func FitPlacement(src, target domain.Size) domain.Placement {
	if src.Empty() || target.Empty() {
		return domain.Placement{OffsetX: target.Width / 2, OffsetY: target.Height / 2}
	}

	scale := math.Min(float64(target.Width)/float64(src.Width), float64(target.Height)/float64(src.Height))

	size := domain.Size{
		Width:  min(int(math.Floor(float64(src.Width)*scale)), target.Width),
		Height: min(int(math.Floor(float64(src.Height)*scale)), target.Height),
	}

	return domain.Placement{
		Size:    size,
		OffsetX: (target.Width - size.Width) / 2,
		OffsetY: (target.Height - size.Height) / 2,
	}
}

// Letterbox resizes img with a Lanczos filter to fit target and pastes it, blended by its own alpha, onto an opaque
// black canvas of exactly the target size. A placement that rounds down to nothing yields the bare canvas.
func Letterbox(img image.Image, target domain.Size) (*image.NRGBA, domain.Placement) {
	p := FitPlacement(domain.SizeOf(img), target)
	canvas := imaging.New(target.Width, target.Height, Background)

	if p.Size.Empty() {
		return canvas, p
	}

	resized := imaging.Resize(img, p.Size.Width, p.Size.Height, imaging.Lanczos)

	return imaging.Overlay(canvas, resized, image.Pt(p.OffsetX, p.OffsetY), 1.0), p
}

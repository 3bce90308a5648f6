package decoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"letterbox/internal/core/domain"
	"letterbox/internal/core/port"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

var ErrEmptyImage = errors.New("decoded image has no pixels")

type ImageDecoder struct {
	rasterizer port.VectorRasterizer
}

func NewImageDecoder(rasterizer port.VectorRasterizer) *ImageDecoder {
	return &ImageDecoder{rasterizer: rasterizer}
}

// Decode dispatches on the source file's extension. SVG documents are rasterized first, everything else is handed
// to the raster decoders. The result always carries an alpha channel, opaque where the source had none.
func (d *ImageDecoder) Decode(src domain.SourceFile, data []byte) (*image.NRGBA, error) {
	raster := data

	if src.Format == domain.SVG {
		log.Info().Str("file", src.Name()).Msg("detected svg, converting")

		png, err := d.rasterizer.Rasterize(data)
		if err != nil {
			return nil, &domain.DecodeError{File: src.Name(), Err: err}
		}
		raster = png
	}

	img, err := imaging.Decode(bytes.NewReader(raster))
	if err != nil {
		return nil, &domain.DecodeError{File: src.Name(), Err: fmt.Errorf("error decoding %s: %w", src.Format, err)}
	}

	if domain.SizeOf(img).Empty() {
		return nil, &domain.DecodeError{File: src.Name(), Err: ErrEmptyImage}
	}

	return toNRGBA(img), nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}

	return imaging.Clone(img)
}

package port

import (
	"image"
	"letterbox/internal/core/domain"
)

type VectorRasterizer interface {
	// Rasterize renders a vector document at its intrinsic size and returns the result as PNG bytes.
	Rasterize(document []byte) ([]byte, error)
}

type ImageDecoder interface {
	// Decode turns the raw bytes of a source file into a bitmap with an alpha channel. The format is taken from
	// the source file's extension, not from the content.
	Decode(src domain.SourceFile, data []byte) (*image.NRGBA, error)
}

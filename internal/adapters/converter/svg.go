package converter

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/net/html/charset"
)

var ErrNoIntrinsicSize = errors.New("svg document has no intrinsic size")

// MaxDimension bounds the intrinsic size of a document so a bogus viewbox can't exhaust memory.
const MaxDimension = 16384

// CSS absolute units in pixels at 96 dpi.
var lengthUnits = map[string]float64{
	"":   1,
	"px": 1,
	"pt": 96.0 / 72.0,
	"pc": 16,
	"in": 96,
	"cm": 96 / 2.54,
	"mm": 96 / 25.4,
}

type SVGRasterizer struct {
	errorMode oksvg.ErrorMode
}

// NewSVGRasterizer returns a rasterizer that skips elements oksvg can't draw, such as metadata and editor
// namespaces. Documents that aren't well-formed still fail.
func NewSVGRasterizer() *SVGRasterizer {
	return &SVGRasterizer{errorMode: oksvg.IgnoreErrorMode}
}

// Rasterize renders the document at its intrinsic size, with no target size hint, and encodes it as PNG. The root
// width and height win over the viewbox, which is mapped onto them.
func (r *SVGRasterizer) Rasterize(document []byte) ([]byte, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(document), r.errorMode)
	if err != nil {
		return nil, fmt.Errorf("error parsing svg: %w", err)
	}

	width, height := rootLength(document)
	fw, fh := intrinsicSize(icon.ViewBox.W, icon.ViewBox.H, width, height)

	w := int(math.Ceil(fw))
	h := int(math.Ceil(fh))
	if w <= 0 || h <= 0 {
		return nil, ErrNoIntrinsicSize
	}
	if w > MaxDimension || h > MaxDimension {
		return nil, fmt.Errorf("svg intrinsic size %dx%d exceeds %d", w, h, MaxDimension)
	}

	log.Debug().Int("width", w).Int("height", h).Msg("rasterizing svg")

	icon.SetTarget(0, 0, float64(w), float64(h))

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	raster := rasterx.NewDasher(w, h, scanner)
	icon.Draw(raster, 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("error encoding rasterized svg: %w", err)
	}

	return buf.Bytes(), nil
}

// intrinsicSize picks the render size: explicit width and height, one of them with the other derived from the
// viewbox aspect ratio, or the viewbox itself.
func intrinsicSize(viewW, viewH, width, height float64) (float64, float64) {
	switch {
	case width > 0 && height > 0:
		return width, height
	case viewW <= 0 || viewH <= 0:
		return 0, 0
	case width > 0:
		return width, width * viewH / viewW
	case height > 0:
		return height * viewW / viewH, height
	default:
		return viewW, viewH
	}
}

// rootLength reads the width and height attributes of the root svg element in pixels. Missing, relative or
// unparseable lengths come back as 0.
func rootLength(document []byte) (float64, float64) {
	decoder := xml.NewDecoder(bytes.NewReader(document))
	decoder.CharsetReader = charset.NewReaderLabel

	for {
		tok, err := decoder.Token()
		if err != nil {
			return 0, 0
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != "svg" {
			return 0, 0
		}

		var width, height float64
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "width":
				width = parseLength(attr.Value)
			case "height":
				height = parseLength(attr.Value)
			}
		}
		return width, height
	}
}

func parseLength(value string) float64 {
	value = strings.TrimSpace(value)

	i := len(value)
	for i > 0 && value[i-1] >= 'a' && value[i-1] <= 'z' {
		i--
	}

	factor, ok := lengthUnits[value[i:]]
	if !ok {
		return 0
	}

	n, err := strconv.ParseFloat(strings.TrimSpace(value[:i]), 64)
	if err != nil || n <= 0 {
		return 0
	}

	return n * factor
}

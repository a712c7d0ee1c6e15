package images

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// fallback when SVG viewBox carries no usable size
const defaultSVGSize = 1024

// maxRasterDim caps rasterization output. A hostile viewBox like
// "0 0 100000 100000" would otherwise allocate tens of gigabytes for the
// RGBA buffer.
const maxRasterDim = 8192

// RasterizeSVG renders SVG data onto a white background, scaled so the
// longer side equals targetSize while keeping aspect ratio. Zero targetSize
// keeps the intrinsic viewBox dimensions.
func RasterizeSVG(svgData []byte, targetSize int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svgData))
	if err != nil {
		return nil, err
	}

	w := int(math.Ceil(icon.ViewBox.W))
	h := int(math.Ceil(icon.ViewBox.H))
	if w <= 0 {
		w = defaultSVGSize
	}
	if h <= 0 {
		h = defaultSVGSize
	}

	limit := targetSize
	if limit <= 0 || limit > maxRasterDim {
		limit = maxRasterDim
	}
	if w > limit || h > limit || targetSize > 0 {
		s := math.Min(float64(limit)/float64(w), float64(limit)/float64(h))
		w = max(int(math.Round(float64(w)*s)), 1)
		h = max(int(math.Round(float64(h)*s)), 1)
	}

	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return dst, nil
}

package compose

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"

	"github.com/pkg/errors"
)

// Overlay merges the two normalized bitmaps into the single confirmation
// raster: one half from each image with a white divider line in the middle.
// `vertical` stacks top/bottom instead of left/right. Orientation is a
// presentation choice only; it never changes which images are shown.
func Overlay(rendered *RenderedComparison, vertical bool) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, rendered.Width, rendered.Height))
	draw.Draw(out, out.Bounds(), rendered.Right, image.Point{}, draw.Src)

	if vertical {
		half := rendered.Height / 2
		draw.Draw(out, image.Rect(0, 0, rendered.Width, half), rendered.Left, image.Point{}, draw.Src)

		extent := rendered.Height / 1000
		if extent < 1 {
			extent = 1
		}
		divider := image.Rect(0, half-extent, rendered.Width, half+extent)
		draw.Draw(out, divider, image.White, image.Point{}, draw.Src)
	} else {
		half := rendered.Width / 2
		draw.Draw(out, image.Rect(0, 0, half, rendered.Height), rendered.Left, image.Point{}, draw.Src)

		extent := rendered.Width / 1000
		if extent < 1 {
			extent = 1
		}
		divider := image.Rect(half-extent, 0, half+extent, rendered.Height)
		draw.Draw(out, divider, image.White, image.Point{}, draw.Src)
	}

	return out
}

// EncodePNG encodes the raster as PNG. The encoder is deterministic, so equal
// pixels always yield equal bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(err, "failed to encode the composed image")
	}

	return buf.Bytes(), nil
}

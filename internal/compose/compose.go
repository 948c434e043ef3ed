// Package compose decodes, normalizes and overlays two images (with optional
// text labels) into one canvas. The stage is purely computational: no
// network, no crypto. Its layout policy is directly observable in pixel
// output, so it is applied deterministically: both images are scaled to one
// target width preserving aspect ratio, the canvas height is the larger of
// the two scaled heights, and the shorter image is top-aligned over a
// transparent letterbox.
package compose

import (
	"bytes"
	"image"
	"image/draw"
	"math"

	// The closed set of decodable formats. Extending support means adding a
	// registration here plus a Format variant in the fetch package.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/pkg/errors"

	"github.com/utilbot/juxtapose/pkg/errorcode"
)

// A RenderedComparison holds the two normalized bitmaps of one comparison.
// Both bitmaps share Width and Height; the shorter source is letterboxed.
// It is produced per request and never persisted.
type RenderedComparison struct {
	Left   *image.RGBA
	Right  *image.RGBA
	Width  int
	Height int
}

// A Compositor renders comparisons. It is read-only after construction and
// safe for concurrent use.
type Compositor struct {
	// TargetWidth is the shared width both images are scaled to.
	TargetWidth int
	// MaxPixels caps the combined source pixel count. It is an explicit
	// resource guard against hostile dimensions (small file, huge raster).
	MaxPixels int

	labelFont *opentype.Font
}

// NewCompositor creates a Compositor with the given target width and
// combined pixel ceiling.
func NewCompositor(targetWidth int, maxPixels int) (*Compositor, error) {
	if targetWidth <= 0 {
		return nil, errorcode.NewConfigError("the compositor target width must be positive")
	}

	if maxPixels <= 0 {
		return nil, errorcode.NewConfigError("the compositor pixel ceiling must be positive")
	}

	labelFont, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse the label font")
	}

	return &Compositor{
		TargetWidth: targetWidth,
		MaxPixels:   maxPixels,
		labelFont:   labelFont,
	}, nil
}

// Compose decodes both rasters, normalizes them to the target width and
// renders the optional labels. Composing the same inputs twice yields
// byte-identical output.
func (c *Compositor) Compose(leftBytes, rightBytes []byte, leftLabel, rightLabel string) (*RenderedComparison, error) {
	// The pixel ceiling is checked against the header dimensions alone. A tiny
	// compressed file can declare a multi-gigapixel raster, so decoding before
	// this check would allocate the hostile raster in full.
	leftConfig, _, err := image.DecodeConfig(bytes.NewReader(leftBytes))
	if err != nil {
		return nil, &errorcode.CompositorError{Kind: errorcode.CompositorDecodeFailed, Err: errors.Wrap(err, "left image")}
	}

	rightConfig, _, err := image.DecodeConfig(bytes.NewReader(rightBytes))
	if err != nil {
		return nil, &errorcode.CompositorError{Kind: errorcode.CompositorDecodeFailed, Err: errors.Wrap(err, "right image")}
	}

	combinedPixels := int64(leftConfig.Width)*int64(leftConfig.Height) + int64(rightConfig.Width)*int64(rightConfig.Height)
	if combinedPixels > int64(c.MaxPixels) {
		return nil, &errorcode.CompositorError{
			Kind: errorcode.CompositorDimensionsTooLarge,
			Err:  errors.Errorf("combined pixel count %v exceeds the ceiling of %v", combinedPixels, c.MaxPixels),
		}
	}

	leftImg, _, err := image.Decode(bytes.NewReader(leftBytes))
	if err != nil {
		return nil, &errorcode.CompositorError{Kind: errorcode.CompositorDecodeFailed, Err: errors.Wrap(err, "left image")}
	}

	rightImg, _, err := image.Decode(bytes.NewReader(rightBytes))
	if err != nil {
		return nil, &errorcode.CompositorError{Kind: errorcode.CompositorDecodeFailed, Err: errors.Wrap(err, "right image")}
	}

	leftScaled := c.scaleToTargetWidth(leftImg)
	rightScaled := c.scaleToTargetWidth(rightImg)

	height := leftScaled.Bounds().Dy()
	if rightHeight := rightScaled.Bounds().Dy(); rightHeight > height {
		height = rightHeight
	}

	rendered := &RenderedComparison{
		Left:   letterbox(leftScaled, c.TargetWidth, height),
		Right:  letterbox(rightScaled, c.TargetWidth, height),
		Width:  c.TargetWidth,
		Height: height,
	}

	if leftLabel != "" {
		if err := c.drawLabel(rendered, rendered.Left, leftLabel, false); err != nil {
			return nil, err
		}
	}

	if rightLabel != "" {
		if err := c.drawLabel(rendered, rendered.Right, rightLabel, true); err != nil {
			return nil, err
		}
	}

	return rendered, nil
}

// scaleToTargetWidth scales the image to the target width preserving its
// aspect ratio. The height is rounded, never truncated, so the ratio holds
// within rounding tolerance.
func (c *Compositor) scaleToTargetWidth(src image.Image) *image.RGBA {
	srcBounds := src.Bounds()
	height := int(math.Round(float64(srcBounds.Dy()) * float64(c.TargetWidth) / float64(srcBounds.Dx())))
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, c.TargetWidth, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, srcBounds, xdraw.Src, nil)

	return dst
}

// letterbox places the image at the top of a transparent canvas of the
// shared dimensions.
func letterbox(src *image.RGBA, width, height int) *image.RGBA {
	if src.Bounds().Dy() == height {
		return src
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, src.Bounds(), src, image.Point{}, draw.Src)

	return dst
}

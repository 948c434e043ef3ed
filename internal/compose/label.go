package compose

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/pkg/errors"

	"github.com/utilbot/juxtapose/pkg/errorcode"
)

// plateColor is the label plate fill: translucent black so the white text
// stays legible against arbitrary image content.
var plateColor = color.RGBA{A: 128}

// drawLabel renders `text` inside a bounded plate anchored to the bottom edge
// of `canvas`: bottom-left for the left image, bottom-right for the right
// one. The font size and margin are proportional to the canvas dimensions
// and the plate is clamped to never exceed the image's displayed width.
func (c *Compositor) drawLabel(rendered *RenderedComparison, canvas *image.RGBA, text string, anchorRight bool) error {
	minDimension := rendered.Width
	if rendered.Height < minDimension {
		minDimension = rendered.Height
	}

	fontSize := float64(minDimension) / 24.0
	if fontSize < 1 {
		fontSize = 1
	}

	margin := minDimension / 64
	if margin < 1 {
		margin = 1
	}

	face, err := opentype.NewFace(c.labelFont, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return &errorcode.CompositorError{Kind: errorcode.CompositorDecodeFailed, Err: errors.Wrap(err, "failed to create the label face")}
	}
	defer face.Close()

	// Trim the text until the plate fits within the image's displayed width.
	maxTextWidth := rendered.Width - 2*margin
	runes := []rune(text)
	textWidth := font.MeasureString(face, string(runes)).Ceil()
	for len(runes) > 0 && textWidth > maxTextWidth {
		runes = runes[:len(runes)-1]
		textWidth = font.MeasureString(face, string(runes)).Ceil()
	}

	if len(runes) == 0 {
		return nil
	}

	metrics := face.Metrics()
	textHeight := (metrics.Ascent + metrics.Descent).Ceil()

	plateWidth := textWidth + 2*margin
	plateHeight := textHeight + 2*margin

	plateLeft := 0
	if anchorRight {
		plateLeft = rendered.Width - plateWidth
	}
	plateTop := rendered.Height - plateHeight

	plateRect := image.Rect(plateLeft, plateTop, plateLeft+plateWidth, plateTop+plateHeight)
	draw.Draw(canvas, plateRect, image.NewUniform(plateColor), image.Point{}, draw.Over)

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.White,
		Face: face,
		Dot: fixed.Point26_6{
			X: fixed.I(plateLeft + margin),
			Y: fixed.I(plateTop+margin) + metrics.Ascent,
		},
	}
	drawer.DrawString(string(runes))

	return nil
}

package watermark

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"
)

// imageStamper overlays a low-opacity, diagonally rotated text pattern
// tiled across the full canvas, so cropping cannot remove the mark.
type imageStamper struct {
	text    string
	opacity float64
	angle   float64
}

func (s *imageStamper) stamp(original []byte, mimeType string) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	dc := gg.NewContext(width, height)
	dc.DrawImage(img, 0, 0)

	fontSize := float64(width) / 18
	if fontSize < 16 {
		fontSize = 16
	}
	parsed, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to parse watermark font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(parsed, &truetype.Options{Size: fontSize}))
	dc.SetRGBA(0.5, 0.5, 0.5, s.opacity)

	textWidth, textHeight := dc.MeasureString(s.text)
	stepX := textWidth + textWidth/2
	stepY := textHeight * 5

	// Rotate about the center and tile beyond the canvas on every side so
	// the rotated pattern still covers the corners.
	dc.Push()
	dc.RotateAbout(gg.Radians(-s.angle), float64(width)/2, float64(height)/2)
	for y := -float64(height); y < 2*float64(height); y += stepY {
		for x := -float64(width); x < 2*float64(width); x += stepX {
			dc.DrawStringAnchored(s.text, x, y, 0.5, 0.5)
		}
	}
	dc.Pop()

	var out bytes.Buffer
	switch mimeType {
	case "image/jpeg":
		err = jpeg.Encode(&out, dc.Image(), &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(&out, dc.Image())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode watermarked image: %w", err)
	}
	return out.Bytes(), nil
}

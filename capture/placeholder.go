package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Placeholder geometry.
const (
	PlaceholderWidth  = 1280
	PlaceholderHeight = 800
	PlaceholderLabel  = "Mock Screenshot for Dribbble"
)

var (
	placeholderBackground = color.RGBA{R: 73, G: 109, B: 137, A: 255}
	// Inclusive corners (400,300)-(880,500).
	placeholderPanel = image.Rect(400, 300, 881, 501)
	placeholderText  = image.Pt(440, 400)
)

// RenderPlaceholder draws the placeholder screenshot and encodes it as PNG.
func RenderPlaceholder() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, PlaceholderWidth, PlaceholderHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(placeholderBackground), image.Point{}, draw.Src)
	draw.Draw(img, placeholderPanel, image.NewUniform(color.White), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		// Dot is the baseline; the label's top edge sits at placeholderText.Y.
		Dot: fixed.P(placeholderText.X, placeholderText.Y+face.Ascent),
	}
	d.DrawString(PlaceholderLabel)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

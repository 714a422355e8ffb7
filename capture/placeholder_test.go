package capture

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
)

func TestRenderPlaceholder(t *testing.T) {
	data, err := RenderPlaceholder()
	if err != nil {
		t.Fatalf("RenderPlaceholder: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if b := img.Bounds(); b.Dx() != PlaceholderWidth || b.Dy() != PlaceholderHeight {
		t.Fatalf("size = %dx%d", b.Dx(), b.Dy())
	}

	tests := []struct {
		name string
		x, y int
		want color.RGBA
	}{
		{name: "background corner", x: 0, y: 0, want: color.RGBA{73, 109, 137, 255}},
		{name: "panel top-left", x: 400, y: 300, want: color.RGBA{255, 255, 255, 255}},
		{name: "panel bottom-right", x: 880, y: 500, want: color.RGBA{255, 255, 255, 255}},
		{name: "outside panel", x: 881, y: 501, want: color.RGBA{73, 109, 137, 255}},
	}
	for _, tt := range tests {
		got := color.RGBAModel.Convert(img.At(tt.x, tt.y)).(color.RGBA)
		if got != tt.want {
			t.Errorf("%s: pixel(%d,%d) = %v, want %v", tt.name, tt.x, tt.y, got, tt.want)
		}
	}

	// The label puts dark pixels inside the panel.
	dark := 0
	for y := 400; y < 415; y++ {
		for x := 440; x < 640; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			if c.R < 128 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("label not drawn")
	}
}

package main

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
)

func TestTileIcon(t *testing.T) {
	fill := color.RGBA{R: 0xFF, G: 0xD7, A: 0xFF}
	img, err := png.Decode(bytes.NewReader(tileIcon(fill)))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 32 {
		t.Errorf("bounds = %v", b)
	}
	// Rounded corner stays transparent, edge midpoint is filled
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}
	if r, g, _, _ := img.At(16, 1).RGBA(); r>>8 != 0xFF || g>>8 != 0xD7 {
		t.Errorf("edge pixel = %v", img.At(16, 1))
	}
}

package main

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/b0ase/ckwidget/internal/settings"
)

// tileIcon draws a 32x32 tray icon: a rounded square filled with fill and
// a pickaxe-ish diagonal bar in the matching contrast colour.
func tileIcon(fill color.RGBA) []byte {
	const size = 32
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	ink := settings.ContrastText(fill)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if corner(x, y, size, 6) {
				continue
			}
			c := fill
			if d := x - (size - 1 - y); d >= -2 && d <= 2 && x > 6 && x < size-6 {
				c = ink
			}
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

// corner reports whether (x, y) lies outside a square of side size whose
// corners are rounded with radius r.
func corner(x, y, size, r int) bool {
	cx, cy := -1, -1
	switch {
	case x < r && y < r:
		cx, cy = r, r
	case x >= size-r && y < r:
		cx, cy = size-r-1, r
	case x < r && y >= size-r:
		cx, cy = r, size-r-1
	case x >= size-r && y >= size-r:
		cx, cy = size-r-1, size-r-1
	default:
		return false
	}
	dx, dy := x-cx, y-cy
	return dx*dx+dy*dy > r*r
}

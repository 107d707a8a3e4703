package settings

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#00FF00", color.RGBA{0, 255, 0, 255}, true},
		{"#FFD700", color.RGBA{255, 215, 0, 255}, true},
		{"#fff", color.RGBA{255, 255, 255, 255}, true},
		{"00FF00", color.RGBA{}, false},
		{"#00FF0", color.RGBA{}, false},
		{"#GGGGGG", color.RGBA{}, false},
		{"", color.RGBA{}, false},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseColor(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestContrastText(t *testing.T) {
	black := color.RGBA{A: 255}
	white := color.RGBA{255, 255, 255, 255}

	gold, _ := ParseColor(DefaultBestColor)
	if ContrastText(gold) != black {
		t.Error("gold swatch should use black text")
	}
	navy, _ := ParseColor("#000080")
	if ContrastText(navy) != white {
		t.Error("navy swatch should use white text")
	}
}

package notes

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

// ErrUnknownColor indicates that a color name or code is outside the palette.
var ErrUnknownColor = errors.New("notes: unknown color")

// Color is an opaque ARGB code taken from Palette.
type Color uint32

const (
	RedOrange  Color = 0xFFFFAB91
	LightGreen Color = 0xFFE7ED9B
	Violet     Color = 0xFFCF94DA
	BabyBlue   Color = 0xFF81DEEA
	RedPink    Color = 0xFFF48FB1
)

// Palette lists every color a note may carry, in presentation order.
var Palette = []Color{RedOrange, LightGreen, Violet, BabyBlue, RedPink}

var colorNames = map[Color]string{
	RedOrange:  "red-orange",
	LightGreen: "light-green",
	Violet:     "violet",
	BabyBlue:   "baby-blue",
	RedPink:    "red-pink",
}

// RandomColor picks a palette entry uniformly at random.
func RandomColor(source *rand.Rand) Color {
	if source == nil {
		return Palette[rand.IntN(len(Palette))]
	}
	return Palette[source.IntN(len(Palette))]
}

// ParseColor resolves a palette name ("violet") or a hex ARGB code ("0xFFCF94DA").
func ParseColor(raw string) (Color, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	for color, name := range colorNames {
		if name == value {
			return color, nil
		}
	}
	var code uint32
	if _, err := fmt.Sscanf(value, "0x%x", &code); err == nil {
		if color := Color(code); color.InPalette() {
			return color, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownColor, raw)
}

// InPalette reports whether the color is one of Palette.
func (c Color) InPalette() bool {
	_, ok := colorNames[c]
	return ok
}

// Name returns the palette name, or the hex code for colors outside the palette.
func (c Color) Name() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("0x%08X", uint32(c))
}

// RGB splits the code into its red, green and blue channels.
func (c Color) RGB() (int, int, int) {
	return int(c>>16) & 0xFF, int(c>>8) & 0xFF, int(c) & 0xFF
}

package core

// Color is a foreground color for a screen cell.
// The platform layer maps each value to a terminal style.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorOrange
	ColorGray
)

// bodyPalette is cycled through to tell bodies apart. Red is reserved for
// bodies in contact.
var bodyPalette = []Color{
	ColorGreen,
	ColorCyan,
	ColorYellow,
	ColorBlue,
	ColorMagenta,
	ColorOrange,
	ColorWhite,
}

// PaletteColor returns the i-th body color, wrapping around.
func PaletteColor(i int) Color {
	if i < 0 {
		i = -i
	}
	return bodyPalette[i%len(bodyPalette)]
}

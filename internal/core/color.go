package core

// Color is a logical foreground color of a screen cell. The platform maps
// it to a terminal color.
type Color uint8

// The seven piece colors come first, followed by UI accents.
const (
	ColorDefault Color = iota
	ColorCyan
	ColorBlue
	ColorOrange
	ColorYellow
	ColorGreen
	ColorMagenta
	ColorRed
	ColorWhite
	ColorGray
	ColorBrightRed
	ColorBrightYellow
	ColorBrightWhite
)

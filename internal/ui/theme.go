package ui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/hlop3z/erdpad/internal/diagram"
	"github.com/hlop3z/erdpad/internal/render"
)

// Theme defines the color scheme for the terminal canvas.
var Theme = struct {
	// Primary colors
	Primary tcell.Color
	Accent  tcell.Color
	Success tcell.Color
	Warning tcell.Color
	Error   tcell.Color

	// Text colors
	Text    tcell.Color
	TextDim tcell.Color

	// Background colors
	Background    tcell.Color
	BackgroundAlt tcell.Color

	// Table boxes
	Border      tcell.Color
	BorderFocus tcell.Color
	Header      tcell.Color
	Selection   tcell.Color
	Key         tcell.Color
}{
	Primary: tcell.ColorBlue,
	Accent:  tcell.ColorAqua, // tcell v2 uses ColorAqua for cyan
	Success: tcell.ColorGreen,
	Warning: tcell.ColorYellow,
	Error:   tcell.ColorRed,

	Text:    tcell.ColorWhite,
	TextDim: tcell.ColorGray,

	Background:    tcell.ColorBlack,
	BackgroundAlt: tcell.ColorTeal,

	Border:      tcell.ColorGray,
	BorderFocus: tcell.ColorBlue,
	Header:      tcell.ColorNavy,
	Selection:   tcell.ColorYellow,
	Key:         tcell.ColorYellow,
}

// CardinalityColor returns the terminal color for relationship markers of c.
func CardinalityColor(c diagram.Cardinality) tcell.Color {
	return tcell.GetColor(render.Color(c))
}

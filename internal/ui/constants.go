package ui

// Cell scale: one terminal cell covers this many canvas units.
const (
	CellWidth  = 10
	CellHeight = 25
)

// Page names
const (
	PageCanvas  = "canvas"
	PageDraft   = "draft"
	PageConfirm = "confirm"
)

// Panel titles (with padding for borders)
const (
	PanelCanvas = " Diagram "
	PanelDraft  = " Edit Table "
)

// Status bar hints
const (
	HintsCanvas = "a add  e/Enter edit  d delete  Tab select  ←↑↓→ pan  s save  q quit"
	HintsDraft  = "Tab next field  Enter activate  Esc cancel"
)

// Form buttons
const (
	ButtonAddColumn    = "Add column"
	ButtonRemoveColumn = "Remove last column"
	ButtonSave         = "Save"
	ButtonCancel       = "Cancel"
	ButtonDelete       = "Delete"
)

// Canvas glyphs
const (
	GlyphPath       = '·'
	GlyphEndArrow   = '▶'
	GlyphStartArrow = '◀'
	GlyphMidCircle  = '●'
	GlyphKey        = '⚷'
)

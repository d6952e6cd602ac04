// Package view holds the presentation contract shared by every renderer:
// pointer hit-testing, cell event truncation, the UI state machine and the
// month view model.
package view

import (
	"math"

	"github.com/starford/daybook/internal/grid"
)

// Layout describes the drawing surface in pixels (or terminal cells).
type Layout struct {
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	HeaderHeight float64 `json:"headerHeight"`
}

// CanvasLayout is the default 800x600 surface with an 80px header.
var CanvasLayout = Layout{Width: 800, Height: 600, HeaderHeight: 80}

// CellWidth returns the width of one day column.
func (l Layout) CellWidth() float64 {
	return l.Width / grid.DaysPerWeek
}

// CellHeight returns the height of one week row.
func (l Layout) CellHeight() float64 {
	return (l.Height - l.HeaderHeight) / grid.Weeks
}

// CellAt maps a pointer position to a grid index. Positions in the header,
// left or right of the grid, or below the last row report false.
func (l Layout) CellAt(x, y float64) (int, bool) {
	if y < l.HeaderHeight || x < 0 || x >= l.Width {
		return 0, false
	}
	cw, ch := l.CellWidth(), l.CellHeight()
	if cw <= 0 || ch <= 0 {
		return 0, false
	}
	col := int(math.Floor(x / cw))
	row := int(math.Floor((y - l.HeaderHeight) / ch))
	idx := row*grid.DaysPerWeek + col
	if idx < 0 || idx >= grid.Cells {
		return 0, false
	}
	return idx, true
}

// CellOrigin returns the top-left corner of the cell at index.
func (l Layout) CellOrigin(index int) (x, y float64) {
	row, col := index/grid.DaysPerWeek, index%grid.DaysPerWeek
	return float64(col) * l.CellWidth(), l.HeaderHeight + float64(row)*l.CellHeight()
}

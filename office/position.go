package office

// Grid bounds of the office floor, inclusive.
const (
	MaxX = 169
	MaxY = 109
)

// Position is a cell on the office grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Clamp returns p with each coordinate independently limited to the grid.
func (p Position) Clamp() Position {
	return Position{X: min(max(p.X, 0), MaxX), Y: min(max(p.Y, 0), MaxY)}
}

// Adjacent returns the eight cells around p, clamped to the grid, in the order
// the bot tries to stand in them: left, right, top, top-left, top-right,
// bottom, bottom-left, bottom-right. Desks are usually placed in rows, so the
// sides come first. At the edges of the grid some candidates coincide with
// each other or with p itself.
func Adjacent(p Position) [8]Position {
	offsets := [8]Position{
		{-1, 0}, {1, 0},
		{0, -1}, {-1, -1}, {1, -1},
		{0, 1}, {-1, 1}, {1, 1},
	}
	var r [8]Position
	for i, d := range offsets {
		r[i] = Position{X: p.X + d.X, Y: p.Y + d.Y}.Clamp()
	}
	return r
}

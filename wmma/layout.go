package wmma

// Layout selects how a matrix is linearized in memory: consecutive
// elements of a row are adjacent (RowMajor) or consecutive elements of
// a column are adjacent (ColMajor). The leading dimension is the stride,
// in elements, between rows (RowMajor) or columns (ColMajor).
type Layout int

const (
	RowMajor Layout = iota
	ColMajor
)

// String implements fmt.Stringer.
func (l Layout) String() string {
	switch l {
	case RowMajor:
		return "row_major"
	case ColMajor:
		return "col_major"
	}
	return "invalid_layout"
}

// Dim2 is a 2D extent. For grids and workgroups, X walks the output rows
// and Y walks the output columns.
type Dim2 struct {
	X, Y int
}

// Coord2 is a (row, column) position in a matrix or in a grid of tiles.
type Coord2 struct {
	Row, Col int
}

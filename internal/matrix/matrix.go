// Package matrix is a dense square matrix used for intersection counts,
// fixed-point similarities and merge indicators
package matrix

// Cell is the set of element types a Square can hold
type Cell interface {
	~bool | ~uint16 | ~uint32
}

// Square is a dense n x n matrix stored in row-major order
type Square[T Cell] struct {
	n     int
	cells []T
}

// New returns a zeroed n x n matrix
func New[T Cell](n int) *Square[T] {
	return &Square[T]{n: n, cells: make([]T, n*n)}
}

// FromCells wraps row-major cells of an n x n matrix. It returns false
// if len(cells) != n*n
func FromCells[T Cell](n int, cells []T) (*Square[T], bool) {
	if len(cells) != n*n {
		return nil, false
	}
	return &Square[T]{n: n, cells: cells}, true
}

// Size is the number of rows (and columns)
func (m *Square[T]) Size() int {
	return m.n
}

// At returns the cell at row i, column j
func (m *Square[T]) At(i, j int) T {
	return m.cells[i*m.n+j]
}

// Set the cell at row i, column j
func (m *Square[T]) Set(i, j int, v T) {
	m.cells[i*m.n+j] = v
}

// Row returns row i. The slice aliases the matrix
func (m *Square[T]) Row(i int) []T {
	return m.cells[i*m.n : (i+1)*m.n]
}

// Cells returns the row-major backing slice
func (m *Square[T]) Cells() []T {
	return m.cells
}

// Keep returns a new matrix with only the rows and columns in keep,
// in the order given
func (m *Square[T]) Keep(keep []int) *Square[T] {
	out := New[T](len(keep))
	for i, row := range keep {
		src := m.Row(row)
		dst := out.Row(i)
		for j, col := range keep {
			dst[j] = src[col]
		}
	}
	return out
}

// Inc adds one to a uint32 cell at (i, j)
func Inc(m *Square[uint32], i, j int) {
	m.cells[i*m.n+j]++
}

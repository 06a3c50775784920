package checkpoint

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/ClaraUktar/pepti-map/internal/matrix"
	"github.com/golang/snappy"
)

// intersectionsName labels the one matrix stored in the intersections file
const intersectionsName = "intersections"

// maxSize bounds the matrix size read back
const maxSize = 1 << 20

// initialCells bounds what is allocated before the cells are read
const initialCells = 1 << 16

// SaveIntersections writes the intersection matrix as a snappy compressed
// stream: the matrix name, its size, then every cell in row-major order.
// Integers are little endian
func (s *Store) SaveIntersections(m *matrix.Square[uint32]) error {
	path := s.path(intersectionsFile)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := snappy.NewBufferedWriter(f)
	if err := writeMatrix(w, intersectionsName, m); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// LoadIntersections reads the matrix written by SaveIntersections
func (s *Store) LoadIntersections() (*matrix.Square[uint32], error) {
	path := s.path(intersectionsFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	defer f.Close()

	m, err := readMatrix(bufio.NewReader(snappy.NewReader(f)), intersectionsName)
	if err != nil {
		return nil, fmt.Errorf("malformed intersections checkpoint %s: %w", path, err)
	}
	return m, nil
}

func writeMatrix(w io.Writer, name string, m *matrix.Square[uint32]) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(name))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, name); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(m.Size())); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, m.Cells())
}

func readMatrix(r io.Reader, name string) (*matrix.Square[uint32], error) {
	var nameLen uint32
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return nil, err
	}
	if nameLen != uint32(len(name)) {
		return nil, fmt.Errorf("no matrix named %q", name)
	}
	got := make([]byte, nameLen)
	if _, err := io.ReadFull(r, got); err != nil {
		return nil, err
	}
	if string(got) != name {
		return nil, fmt.Errorf("no matrix named %q, found %q", name, got)
	}

	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n > maxSize {
		return nil, fmt.Errorf("matrix size %d exceeds %d", n, maxSize)
	}

	// rows are appended as they are read, so a size that the stream
	// doesn't hold fails without allocating the whole matrix
	cells := make([]uint32, 0, min(n*n, initialCells))
	row := make([]uint32, min(n, initialCells))
	for left := n * n; left > 0; {
		chunk := row[:min(left, uint64(len(row)))]
		if err := binary.Read(r, binary.LittleEndian, chunk); err != nil {
			return nil, fmt.Errorf("matrix of size %d is truncated: %w", n, err)
		}
		cells = append(cells, chunk...)
		left -= uint64(len(chunk))
	}
	m, _ := matrix.FromCells(int(n), cells)
	return m, nil
}

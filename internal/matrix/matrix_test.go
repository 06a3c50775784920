package matrix

import (
	"reflect"
	"testing"
)

func TestSquare_Keep(t *testing.T) {
	m := New[uint32](4)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			m.Set(i, j, uint32(i*10+j))
		}
	}

	tests := []struct {
		name string
		keep []int
		want []uint32
	}{
		{"drop the middle", []int{0, 3}, []uint32{0, 3, 30, 33}},
		{"keep everything", []int{0, 1, 2, 3}, m.Cells()},
		{"keep nothing", []int{}, []uint32{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.Keep(tt.keep)
			if got.Size() != len(tt.keep) {
				t.Fatalf("Keep().Size() = %d, want %d", got.Size(), len(tt.keep))
			}
			if !reflect.DeepEqual(got.Cells(), tt.want) {
				t.Errorf("Keep() = %v, want %v", got.Cells(), tt.want)
			}
		})
	}
}

func TestInc(t *testing.T) {
	m := New[uint32](2)
	Inc(m, 0, 1)
	Inc(m, 0, 1)
	Inc(m, 1, 0)

	if m.At(0, 1) != 2 || m.At(1, 0) != 1 || m.At(0, 0) != 0 {
		t.Errorf("Inc() produced %v", m.Cells())
	}
}

func TestFromCells(t *testing.T) {
	if _, ok := FromCells(2, []uint16{1, 2, 3}); ok {
		t.Error("FromCells() accepted a non-square slice")
	}
	m, ok := FromCells(2, []uint16{1, 2, 3, 4})
	if !ok || m.At(1, 0) != 3 {
		t.Errorf("FromCells() = %v, %v", m, ok)
	}
}

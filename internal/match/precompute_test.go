package match

import (
	"reflect"
	"testing"
)

func TestPrecomputingMatcher_Intersections(t *testing.T) {
	m, err := NewPrecomputingMatcher(testIndex(), testMapping, true)
	if err != nil {
		t.Fatal(err)
	}
	m.AddMatches(11, read1) // clusters 0, 1, 2
	m.AddMatches(21, read2) // clusters 0, 2

	want := []uint32{
		2, 1, 2, 0,
		1, 1, 1, 0,
		2, 1, 2, 0,
		0, 0, 0, 0,
	}
	if got := m.Intersections().Cells(); !reflect.DeepEqual(got, want) {
		t.Errorf("Intersections() = %v, want %v", got, want)
	}

	// the embedded matcher still records matches
	wantTable := tableOf(4, map[int][]int{0: {11, 21}, 1: {11}, 2: {11, 21}})
	if got := m.Matches(); !reflect.DeepEqual(got, wantTable) {
		t.Errorf("Matches() = %v, want %v", got, wantTable)
	}
}

func TestPrecomputingMatcher_diagonalIsLazy(t *testing.T) {
	m, _ := NewPrecomputingMatcher(testIndex(), testMapping, true)
	m.AddMatches(11, read1)

	if got := m.intersections.At(0, 0); got != 0 {
		t.Errorf("diagonal filled during matching: %d", got)
	}
	if got := m.Intersections().At(0, 0); got != 1 {
		t.Errorf("Intersections() diagonal = %d, want 1", got)
	}
}

func TestPrecomputingMatcher_Reset(t *testing.T) {
	m, _ := NewPrecomputingMatcher(testIndex(), testMapping, true)
	m.AddMatches(11, read1)
	m.Reset()

	for _, v := range m.Intersections().Cells() {
		if v != 0 {
			t.Fatalf("Reset() left intersections %v", m.Intersections().Cells())
		}
	}
}

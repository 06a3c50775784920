package peptide

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ClaraUktar/pepti-map/internal/match"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "peptides.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuilder_Build(t *testing.T) {
	type lookup struct {
		kmer string
		want []int
	}
	tests := []struct {
		name              string
		content           string
		replaceIsoleucine bool
		wantMapping       []int
		wantClusters      int
		wantGroups        bool
		lookups           []lookup
	}{
		{
			name:              "simple",
			content:           "PEPTIDEK\nPEP\nAIKLMNPQ\n",
			replaceIsoleucine: true,
			wantMapping:       []int{0, -1, 1},
			wantClusters:      2,
			lookups: []lookup{
				{"PEPTLD", []int{0}},
				{"PTLDEK", []int{0}},
				{"PEPTID", nil},
				{"ALKLMN", []int{1}},
				{"KLMNPQ", []int{1}},
			},
		},
		{
			name:         "keep isoleucine",
			content:      "PEPTIDEK\n",
			wantMapping:  []int{0},
			wantClusters: 1,
			lookups: []lookup{
				{"PEPTID", []int{0}},
				{"PEPTLD", nil},
			},
		},
		{
			name:              "shared k-mer",
			content:           "MSDGTKW\nSDGTKWA\n",
			replaceIsoleucine: true,
			wantMapping:       []int{0, 1},
			wantClusters:      2,
			lookups: []lookup{
				{"MSDGTK", []int{0}},
				{"SDGTKW", []int{0, 1}},
				{"DGTKWA", []int{1}},
			},
		},
		{
			name:              "protein groups",
			content:           "PEPTIDEK\tA;B\nPEPTIDEKK\tA;B \nAAA\tC\nMSDGTK\tC\n",
			replaceIsoleucine: true,
			wantMapping:       []int{0, 0, -1, 1},
			wantClusters:      2,
			wantGroups:        true,
			lookups: []lookup{
				{"PEPTLD", []int{0}},
				{"TLDEKK", []int{0}},
				{"MSDGTK", []int{1}},
			},
		},
		{
			name:         "empty",
			content:      "",
			wantClusters: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Builder{KmerLength: 6, ReplaceIsoleucine: tt.replaceIsoleucine}
			got, err := b.Build(writeFile(t, tt.content))
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got.Mapping, tt.wantMapping) {
				t.Errorf("Build() mapping = %v, want %v", got.Mapping, tt.wantMapping)
			}
			if got.NumClusters() != tt.wantClusters {
				t.Errorf("Build() clusters = %d, want %d", got.NumClusters(), tt.wantClusters)
			}
			if got.ProteinGroups != tt.wantGroups {
				t.Errorf("Build() protein groups = %v, want %v", got.ProteinGroups, tt.wantGroups)
			}
			for _, l := range tt.lookups {
				if ids := got.Index.Get(l.kmer); !reflect.DeepEqual(ids, l.want) {
					t.Errorf("Index.Get(%s) = %v, want %v", l.kmer, ids, l.want)
				}
			}
		})
	}
}

func TestBuilder_Build_errors(t *testing.T) {
	b := &Builder{KmerLength: 6}

	if _, err := b.Build(filepath.Join(t.TempDir(), "missing.txt")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Build() missing file error = %v, want fs.ErrNotExist", err)
	}

	if _, err := b.Build(writeFile(t, "PEPTIDEK\tA\nMSDGTK\n")); err == nil {
		t.Error("Build() accepted a line without a protein group")
	}

	bad := &Builder{KmerLength: 0}
	if _, err := bad.BuildFrom(strings.NewReader("PEPTIDEK\n")); err == nil {
		t.Error("BuildFrom() accepted a k-mer length of 0")
	}
}

func TestReadSequences(t *testing.T) {
	path := writeFile(t, "PEPTIDEK\tA;B\n QQQQQQ \tA\nAAA\tC\n")

	got, err := ReadSequences(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"PEPTIDEK", "QQQQQQ", "AAA"}; !reflect.DeepEqual(got, want) {
		t.Errorf("ReadSequences() = %v, want %v", got, want)
	}

	lines, err := Lines(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"PEPTIDEK\tA;B", " QQQQQQ \tA", "AAA\tC"}; !reflect.DeepEqual(lines, want) {
		t.Errorf("Lines() = %v, want %v", lines, want)
	}
}

// two peptides share a protein group, one read hits the first of them
func TestEndToEnd(t *testing.T) {
	const readID = 11
	path := writeFile(t, "MSDGTK\tG1\nQQQQQQ\tG1\nHHHHHH\tG2\nYYYYYY\tG3\n")

	b := &Builder{KmerLength: 6, ReplaceIsoleucine: true}
	clusters, err := b.Build(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 0, 1, 2}; !reflect.DeepEqual(clusters.Mapping, want) {
		t.Fatalf("Build() mapping = %v, want %v", clusters.Mapping, want)
	}

	m, err := match.NewMatcher(clusters.Index, clusters.Mapping, true)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.SetPeptideIndex(clusters.Peptides); err != nil {
		t.Fatal(err)
	}
	m.AddMatches(readID, "ATGTCCGACGGGACTAAATGG")

	table := m.Matches()
	if got := table.Sorted(0); !reflect.DeepEqual(got, []int{readID}) {
		t.Errorf("Matches() cluster 0 = %v, want [%d]", got, readID)
	}
	for _, c := range []int{1, 2} {
		if _, ok := table.Get(c); ok {
			t.Errorf("Matches() cluster %d present, want absent", c)
		}
	}

	seqs, err := ReadSequences(path)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := m.WriteQuantReport(&buf, seqs); err != nil {
		t.Fatal(err)
	}
	rows := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(rows) != 5 {
		t.Fatalf("WriteQuantReport() rows = %d, want 5", len(rows))
	}
	if want := "MSDGTK\t0\t1\t1"; rows[1] != want {
		t.Errorf("WriteQuantReport() first peptide = %q, want %q", rows[1], want)
	}
	// same cluster, but none of its own k-mers was hit
	if want := "QQQQQQ\t0\t0\t1"; rows[2] != want {
		t.Errorf("WriteQuantReport() second peptide = %q, want %q", rows[2], want)
	}
	if want := "HHHHHH\t1\t0\t0"; rows[3] != want {
		t.Errorf("WriteQuantReport() third peptide = %q, want %q", rows[3], want)
	}
}

func TestBuilder_Source(t *testing.T) {
	build := func(content string, k int, replace bool) *Clusters {
		t.Helper()
		b := &Builder{KmerLength: k, ReplaceIsoleucine: replace}
		c, err := b.BuildFrom(strings.NewReader(content))
		if err != nil {
			t.Fatal(err)
		}
		return c
	}

	base := build("MSDGTKW\nCPTGLN\nHHHHHH\n", 6, true)
	if base.Source == "" || base.Index.Source != base.Source {
		t.Fatalf("Build() Source = %q, index Source = %q", base.Source, base.Index.Source)
	}
	if again := build("MSDGTKW\nCPTGLN\nHHHHHH\n", 6, true); again.Source != base.Source {
		t.Errorf("Build() Source of the same input = %q, want %q", again.Source, base.Source)
	}

	tests := []struct {
		name    string
		content string
		k       int
		replace bool
	}{
		{"other peptides, same cluster count", "WWWWWW\nYYYYYY\nHHHHHH\n", 6, true},
		{"other k", "MSDGTKW\nCPTGLN\nHHHHHH\n", 5, true},
		{"isoleucine kept", "MSDGTKW\nCPTGLN\nHHHHHH\n", 6, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := build(tt.content, tt.k, tt.replace); got.Source == base.Source {
				t.Errorf("Build() Source = %q, same as the base input", got.Source)
			}
		})
	}
}

func TestBuilder_MappingOnly(t *testing.T) {
	content := "MSDGTK\tG1\nQQQQQQ\tG1\nHHH\tG2\nYYYYYY\tG3\n"

	full, err := (&Builder{KmerLength: 6}).BuildFrom(strings.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}
	only, err := (&Builder{KmerLength: 6, MappingOnly: true}).BuildFrom(strings.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}

	if only.Index.Len() != 0 {
		t.Errorf("Build() with MappingOnly indexed %d k-mers", only.Index.Len())
	}
	if !reflect.DeepEqual(only.Mapping, full.Mapping) || only.NumClusters() != full.NumClusters() || only.Source != full.Source {
		t.Errorf("Build() with MappingOnly = %v/%d/%s, want %v/%d/%s",
			only.Mapping, only.NumClusters(), only.Source, full.Mapping, full.NumClusters(), full.Source)
	}
	if got := only.Peptides.Get("QQQQQQ"); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("Peptides.Get(QQQQQQ) = %v, want [1]", got)
	}
	if only.Peptides.NumClusters != 4 {
		t.Errorf("Peptides.NumClusters = %d, want 4", only.Peptides.NumClusters)
	}
}

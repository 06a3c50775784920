package checkpoint

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ClaraUktar/pepti-map/internal/match"
	"github.com/ClaraUktar/pepti-map/internal/merge"
	"github.com/fluhus/gostuff/sets"
)

// SaveMapping writes the peptide line to cluster mapping, one id per line
func (s *Store) SaveMapping(mapping []int) error {
	lines := make([][]int, len(mapping))
	for i, c := range mapping {
		lines[i] = []int{c}
	}
	return writeLists(s.path(mappingFile), lines)
}

// LoadMapping reads the mapping written by SaveMapping
func (s *Store) LoadMapping() ([]int, error) {
	lines, err := readLists(s.path(mappingFile))
	if err != nil {
		return nil, err
	}
	mapping := make([]int, len(lines))
	for i, l := range lines {
		if len(l) != 1 {
			return nil, fmt.Errorf("malformed mapping checkpoint %s: line %d has %d ids", s.path(mappingFile), i+1, len(l))
		}
		mapping[i] = l[0]
	}
	return mapping, nil
}

// SaveMatches writes one line per cluster id with its sorted read ids. An
// absent cluster is an empty line
func (s *Store) SaveMatches(table *match.Table) error {
	lines := make([][]int, table.Len())
	for c := range lines {
		lines[c] = table.Sorted(c)
	}
	return writeLists(s.path(matchesFile), lines)
}

// LoadMatches reads the match table written by SaveMatches
func (s *Store) LoadMatches() (*match.Table, error) {
	lines, err := readLists(s.path(matchesFile))
	if err != nil {
		return nil, err
	}
	table := match.NewTable(len(lines))
	for c, reads := range lines {
		for _, r := range reads {
			table.Add(c, r)
		}
	}
	return table, nil
}

// SaveMergeResult writes the merged read sets and their cluster ids to two
// files, line k of each describing group k
func (s *Store) SaveMergeResult(res merge.Result) error {
	if len(res.Sets) != len(res.Mappings) {
		return fmt.Errorf("%w: %d merged sets, %d peptide mappings", merge.ErrLengthMismatch, len(res.Sets), len(res.Mappings))
	}
	readLines := make([][]int, len(res.Sets))
	for k, set := range res.Sets {
		readLines[k] = match.SortedIDs(set)
	}
	if err := writeLists(s.path(mergedSetsFile), readLines); err != nil {
		return err
	}
	return writeLists(s.path(mergedPeptideFile), res.Mappings)
}

// LoadMergeResult reads the result written by SaveMergeResult
func (s *Store) LoadMergeResult() (merge.Result, error) {
	readLines, err := readLists(s.path(mergedSetsFile))
	if err != nil {
		return merge.Result{}, err
	}
	mappings, err := readLists(s.path(mergedPeptideFile))
	if err != nil {
		return merge.Result{}, err
	}
	if len(readLines) != len(mappings) {
		return merge.Result{}, fmt.Errorf("%w: %d merged sets, %d peptide mappings", merge.ErrLengthMismatch, len(readLines), len(mappings))
	}

	res := merge.Result{
		Sets:     make([]sets.Set[int], len(readLines)),
		Mappings: mappings,
	}
	for k, reads := range readLines {
		set := sets.Set[int]{}
		set.Add(reads...)
		res.Sets[k] = set
	}
	return res, nil
}

// writeLists writes each list as comma separated ids on its own line
func writeLists(path string, lists [][]int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, list := range lists {
		for i, id := range list {
			if i > 0 {
				w.WriteByte(',')
			}
			w.WriteString(strconv.Itoa(id))
		}
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// readLists reads a file written by writeLists. Empty lines are nil lists
func readLists(path string) ([][]int, error) {
	dat, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	if len(dat) == 0 {
		return nil, nil
	}

	lines := strings.Split(strings.TrimSuffix(string(dat), "\n"), "\n")
	lists := make([][]int, len(lines))
	for i, line := range lines {
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		list := make([]int, len(fields))
		for j, field := range fields {
			if list[j], err = strconv.Atoi(field); err != nil {
				return nil, fmt.Errorf("malformed checkpoint %s at line %d: %w", path, i+1, err)
			}
		}
		lists[i] = list
	}
	return lists, nil
}

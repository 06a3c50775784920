package reads

import (
	"errors"
	"fmt"
	"sort"

	"github.com/fluhus/gostuff/sets"
)

// Retrieve returns the reads of paths whose ids are in ids, with the same
// cutoff and reverse complement Each applies. Reads of the first file come
// first, each file's reads in record order. Every file is read once and
// reading stops after its last wanted record
func Retrieve(paths []string, cutoff int, ids sets.Set[int]) ([]Read, error) {
	if len(paths) < 1 || len(paths) > 2 {
		return nil, fmt.Errorf("%w, got %d", ErrFileCount, len(paths))
	}

	wanted := make([][]int, len(paths))
	for id := range ids {
		number, file := DecodeID(id)
		if file < 1 || file > len(paths) || number < 1 {
			return nil, fmt.Errorf("read id %d is not in any of %d read files", id, len(paths))
		}
		wanted[file-1] = append(wanted[file-1], number)
	}

	var out []Read
	for i, path := range paths {
		numbers := wanted[i]
		if len(numbers) == 0 {
			continue
		}
		sort.Ints(numbers)

		file, next := i+1, 0
		err := eachRecord(path, nil, func(number int, seq string) error {
			if number != numbers[next] {
				return nil
			}
			out = append(out, Read{ID: EncodeID(number, file), Seq: process(seq, cutoff, file == 2)})
			next++
			if next == len(numbers) {
				return errDone
			}
			return nil
		})
		if err != nil && err != errDone {
			return nil, err
		}
		if next < len(numbers) {
			return nil, fmt.Errorf("read %d not found in %s", EncodeID(numbers[next], file), path)
		}
	}
	return out, nil
}

// errDone stops a scan early
var errDone = errors.New("done")

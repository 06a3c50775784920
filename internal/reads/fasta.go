package reads

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// WriteFASTA writes reads as FASTA records with the read id as header
func WriteFASTA(w io.Writer, reads []Read) error {
	bw := bufio.NewWriter(w)
	for _, r := range reads {
		if _, err := fmt.Fprintf(bw, ">%d\n%s\n", r.ID, r.Seq); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadFASTA parses records written by WriteFASTA. Sequence lines of a
// record are joined
func ReadFASTA(r io.Reader) ([]Read, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLine)

	var out []Read
	var seq strings.Builder
	flush := func() {
		if len(out) > 0 {
			out[len(out)-1].Seq = seq.String()
		}
		seq.Reset()
	}

	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if strings.HasPrefix(text, ">") {
			flush()
			fields := strings.Fields(text[1:])
			if len(fields) == 0 {
				return nil, fmt.Errorf("line %d: empty header", line)
			}
			id, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, fmt.Errorf("line %d: failed to parse read id: %w", line, err)
			}
			out = append(out, Read{ID: id})
			continue
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("line %d: sequence before first header", line)
		}
		seq.WriteString(text)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return out, nil
}

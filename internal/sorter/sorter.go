// Package sorter provides a stable total-order sort of buffered VCF data
// lines by a configured key column.
package sorter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	psort "github.com/exascience/pargo/sort"
)

// ColumnNotFoundError reports a sort key that is absent from the VCF
// header. It is fatal: the key is resolved once at startup.
type ColumnNotFoundError struct {
	Column  string
	Columns []string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found in header (have %s)",
		e.Column, strings.Join(e.Columns, ", "))
}

// ResolveKey resolves a sort key to a fixed 0-based column index. The key
// is either a column name from the header or a numeric index. An empty key
// defaults to POS. Name resolution against an absent header fails.
func ResolveKey(key string, columns []string) (int, error) {
	if key == "" {
		key = "POS"
	}
	if idx, err := strconv.Atoi(key); err == nil {
		if idx < 0 {
			return 0, fmt.Errorf("column index %d is negative", idx)
		}
		return idx, nil
	}
	for i, c := range columns {
		if c == key {
			return i, nil
		}
	}
	return 0, &ColumnNotFoundError{Column: key, Columns: columns}
}

// sortRecord pairs a data line with its extracted key.
type sortRecord struct {
	line string
	key  string
	num  float64
}

// recordSorter implements pargo's StableSorter over sortRecords.
type recordSorter struct {
	recs    []sortRecord
	numeric bool
	reverse bool
}

func (s recordSorter) Len() int {
	return len(s.recs)
}

func (s recordSorter) less(a, b *sortRecord) bool {
	if s.numeric {
		if s.reverse {
			return a.num > b.num
		}
		return a.num < b.num
	}
	if s.reverse {
		return a.key > b.key
	}
	return a.key < b.key
}

func (s recordSorter) Less(i, j int) bool {
	return s.less(&s.recs[i], &s.recs[j])
}

func (s recordSorter) SequentialSort(i, j int) {
	recs := s.recs[i:j]
	sort.SliceStable(recs, func(a, b int) bool {
		return s.less(&recs[a], &recs[b])
	})
}

func (s recordSorter) NewTemp() psort.StableSorter {
	return recordSorter{
		recs:    make([]sortRecord, len(s.recs)),
		numeric: s.numeric,
		reverse: s.reverse,
	}
}

func (s recordSorter) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s.recs, source.(recordSorter).recs
	return func(i, j, n int) {
		copy(dst[i:i+n], src[j:j+n])
	}
}

// Sort orders lines by the key column at index keyIdx, in place. The
// comparison is numeric when every non-empty key parses as a number,
// bytewise lexicographic otherwise. The sort is stable: equal keys retain
// their original relative order. reverse flips to descending.
//
// Lines lacking the key column sort with an empty key (numeric value 0).
func Sort(lines []string, keyIdx int, reverse bool) {
	recs := make([]sortRecord, len(lines))
	numeric := true
	for i, line := range lines {
		key := field(line, keyIdx)
		recs[i] = sortRecord{line: line, key: key}
		if key == "" {
			continue
		}
		if numeric {
			v, err := strconv.ParseFloat(key, 64)
			if err != nil {
				numeric = false
			} else {
				recs[i].num = v
			}
		}
	}
	if !numeric {
		// Numeric parses from a partial first pass are ignored.
		for i := range recs {
			recs[i].num = 0
		}
	}

	psort.StableSort(recordSorter{recs: recs, numeric: numeric, reverse: reverse})

	for i := range recs {
		lines[i] = recs[i].line
	}
}

// field returns the idx-th tab-delimited field of line, or "" when the
// line has fewer fields.
func field(line string, idx int) string {
	start := 0
	for ; idx > 0; idx-- {
		t := strings.IndexByte(line[start:], '\t')
		if t < 0 {
			return ""
		}
		start += t + 1
	}
	if t := strings.IndexByte(line[start:], '\t'); t >= 0 {
		return line[start : start+t]
	}
	return line[start:]
}

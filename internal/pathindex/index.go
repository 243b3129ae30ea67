// Package pathindex builds a per-path positional index over a variation
// graph: for every node it records the half-open coordinate span the node
// occupies within each path that traverses it.
package pathindex

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/exascience/pargo/parallel"

	"github.com/inodb/pathvcf/internal/gfa"
)

// Interval is the coordinate span a node occupies within a path,
// half-open, in path-local coordinates.
type Interval struct {
	Node  uint64
	Start uint64
	End   uint64
	Path  string
}

// Index is the node→path coordinate table. It is built once per run and
// thereafter read-only; concurrent readers need no synchronization.
type Index struct {
	// Intervals sorted by node id, then path name.
	Intervals []Interval
	// Diagnostics collects per-path indexing failures (unknown segment ids)
	// and malformed reference rows. Non-fatal.
	Diagnostics []string

	contigLen map[string]uint64
	nodePath  map[uint64]string
}

// buildGrainSize is the number of paths below which Build stops splitting
// work across goroutines.
const buildGrainSize = 4

// Build walks every path of the graph and emits one interval per step,
// maintaining a running offset from 0. Orientation does not affect length
// accounting. Paths are independent units: each one writes into its own
// pre-sized slot, and slots are concatenated in path order afterwards, so
// the result is identical regardless of worker interleaving.
//
// A path referencing an unknown segment id fails that path only; the run
// continues and the failure is recorded as a diagnostic.
func Build(g *gfa.Graph) *Index {
	slots := make([][]Interval, len(g.Paths))
	diags := make([]string, len(g.Paths))

	buildSlots(g, slots, diags, 0, len(g.Paths))

	idx := &Index{
		contigLen: make(map[string]uint64),
		nodePath:  make(map[uint64]string),
	}
	total := 0
	for _, s := range slots {
		total += len(s)
	}
	idx.Intervals = make([]Interval, 0, total)
	for i, s := range slots {
		if diags[i] != "" {
			idx.Diagnostics = append(idx.Diagnostics, diags[i])
			continue
		}
		idx.Intervals = append(idx.Intervals, s...)
	}

	sort.SliceStable(idx.Intervals, func(i, j int) bool {
		a, b := idx.Intervals[i], idx.Intervals[j]
		if a.Node != b.Node {
			return a.Node < b.Node
		}
		return a.Path < b.Path
	})

	idx.rebuildLookups()
	return idx
}

func buildSlots(g *gfa.Graph, slots [][]Interval, diags []string, lo, hi int) {
	if hi-lo <= buildGrainSize {
		for i := lo; i < hi; i++ {
			slots[i], diags[i] = indexPath(g, &g.Paths[i])
		}
		return
	}
	mid := (lo + hi) / 2
	parallel.Do(
		func() { buildSlots(g, slots, diags, lo, mid) },
		func() { buildSlots(g, slots, diags, mid, hi) },
	)
}

func indexPath(g *gfa.Graph, p *gfa.Path) ([]Interval, string) {
	intervals := make([]Interval, 0, len(p.Steps))
	var offset uint64
	for _, step := range p.Steps {
		length, ok := g.SegLen[step.Node]
		if !ok {
			return nil, fmt.Sprintf("path %s references unknown segment %d", p.Name, step.Node)
		}
		end := offset + uint64(length)
		intervals = append(intervals, Interval{
			Node:  step.Node,
			Start: offset,
			End:   end,
			Path:  p.Name,
		})
		offset = end
	}
	return intervals, ""
}

// rebuildLookups derives the contig-length and node→path maps from the
// interval list. For nodes on several paths the first interval in sorted
// order wins, which keeps lookups deterministic.
func (idx *Index) rebuildLookups() {
	for _, iv := range idx.Intervals {
		if iv.End > idx.contigLen[iv.Path] {
			idx.contigLen[iv.Path] = iv.End
		}
		if _, ok := idx.nodePath[iv.Node]; !ok {
			idx.nodePath[iv.Node] = iv.Path
		}
	}
}

// NodePath returns the path name recorded for a node, if any.
func (idx *Index) NodePath(node uint64) (string, bool) {
	p, ok := idx.nodePath[node]
	return p, ok
}

// ContigLengths returns the maximum interval end offset per path name.
// The returned map is shared; callers must not mutate it.
func (idx *Index) ContigLengths() map[string]uint64 {
	return idx.contigLen
}

// referenceHeader is the first row of the four-column reference table.
const referenceHeader = "node\tstart\tend\tpath"

// WriteReference writes the index as a tab-delimited reference table with
// exactly four columns: node, start, end, path.
func (idx *Index) WriteReference(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, referenceHeader); err != nil {
		return fmt.Errorf("write reference header: %w", err)
	}
	for _, iv := range idx.Intervals {
		if _, err := fmt.Fprintf(bw, "%d\t%d\t%d\t%s\n", iv.Node, iv.Start, iv.End, iv.Path); err != nil {
			return fmt.Errorf("write reference row: %w", err)
		}
	}
	return bw.Flush()
}

// ReadReference parses a four-column reference table back into an Index.
// The header row and blank lines are skipped; short or non-numeric rows are
// recorded as diagnostics and dropped.
func ReadReference(r io.Reader) (*Index, error) {
	idx := &Index{
		contigLen: make(map[string]uint64),
		nodePath:  make(map[uint64]string),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		if lineNo == 1 && strings.HasPrefix(line, "node\t") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			idx.Diagnostics = append(idx.Diagnostics,
				fmt.Sprintf("line %d: reference row has %d columns, want 4", lineNo, len(fields)))
			continue
		}
		node, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			idx.Diagnostics = append(idx.Diagnostics,
				fmt.Sprintf("line %d: node id %q is not numeric", lineNo, fields[0]))
			continue
		}
		start, err := strconv.ParseUint(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			idx.Diagnostics = append(idx.Diagnostics,
				fmt.Sprintf("line %d: start offset %q is not numeric", lineNo, fields[1]))
			continue
		}
		end, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 64)
		if err != nil {
			idx.Diagnostics = append(idx.Diagnostics,
				fmt.Sprintf("line %d: end offset %q is not numeric", lineNo, fields[2]))
			continue
		}
		path := strings.TrimSpace(fields[3])
		if path == "" {
			continue
		}
		idx.Intervals = append(idx.Intervals, Interval{Node: node, Start: start, End: end, Path: path})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read reference table: %w", err)
	}

	idx.rebuildLookups()
	return idx, nil
}

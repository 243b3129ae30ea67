// Package resolve maps a variant's node-derived key to a pangenome path
// name, preferring an explicit alignment table over the extracted index.
package resolve

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// AlignmentTable is the node→path mapping loaded from an alignment TSV.
type AlignmentTable struct {
	paths map[uint64]string
	// Collisions counts rows whose node id was already mapped. The first
	// occurrence in file order wins.
	Collisions int
	// Diagnostics collects malformed rows. Non-fatal.
	Diagnostics []string
}

// Len returns the number of mapped nodes.
func (t *AlignmentTable) Len() int {
	return len(t.paths)
}

// ReadAlignment parses an alignment table: tab-delimited, at least five
// columns, column 0 the node id and column 4 the path name; extra columns
// are ignored. The first row is treated as a header and skipped, as are
// blank lines. Duplicate node ids keep the first mapping seen.
func ReadAlignment(r io.Reader) (*AlignmentTable, error) {
	t := &AlignmentTable{paths: make(map[uint64]string)}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 5 {
			t.Diagnostics = append(t.Diagnostics,
				fmt.Sprintf("line %d: alignment row has %d columns, want at least 5", lineNo, len(fields)))
			continue
		}
		node, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 64)
		if err != nil {
			t.Diagnostics = append(t.Diagnostics,
				fmt.Sprintf("line %d: node id %q is not numeric", lineNo, fields[0]))
			continue
		}
		path := strings.TrimSpace(fields[4])
		if path == "" {
			continue
		}
		if _, ok := t.paths[node]; ok {
			t.Collisions++
			continue
		}
		t.paths[node] = path
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read alignment table: %w", err)
	}

	return t, nil
}

// NodeSource answers node→path lookups for the fallback table.
// pathindex.Index implements it; so does MapSource.
type NodeSource interface {
	NodePath(node uint64) (string, bool)
}

// MapSource is a NodeSource over a plain map.
type MapSource map[uint64]string

// NodePath returns the path mapped for a node.
func (m MapSource) NodePath(node uint64) (string, bool) {
	p, ok := m[node]
	return p, ok
}

// Resolver resolves node ids to path names. Lookup order: alignment table
// first, extracted reference table as fallback. Both structures are built
// before workers start and are read-only afterwards.
type Resolver struct {
	alignment *AlignmentTable
	reference NodeSource
}

// New builds a resolver. Either source may be nil.
func New(alignment *AlignmentTable, reference NodeSource) *Resolver {
	return &Resolver{alignment: alignment, reference: reference}
}

// Resolve returns the path name for a node, or false when the node is
// unresolvable in both sources.
func (r *Resolver) Resolve(node uint64) (string, bool) {
	if r.alignment != nil {
		if p, ok := r.alignment.paths[node]; ok {
			return p, true
		}
	}
	if r.reference != nil {
		if p, ok := r.reference.NodePath(node); ok {
			return p, true
		}
	}
	return "", false
}

// ParseNodeID extracts a node id from a CHROM value. Accepts a plain
// integer ("1234") or a trailing digit run ("node_1234").
func ParseNodeID(chrom string) (uint64, bool) {
	if v, err := strconv.ParseUint(chrom, 10, 64); err == nil {
		return v, true
	}
	end := len(chrom)
	for end > 0 && !isDigit(chrom[end-1]) {
		end--
	}
	start := end
	for start > 0 && isDigit(chrom[start-1]) {
		start--
	}
	if start == end {
		return 0, false
	}
	v, err := strconv.ParseUint(chrom[start:end], 10, 64)
	return v, err == nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// NodeID extracts a node id from a record, trying CHROM first. Some graph
// callers emit a placeholder CHROM (e.g. "graph") and carry the node id in
// POS; POS is used as a fallback when CHROM yields no digits.
func NodeID(chrom, pos string) (uint64, bool) {
	if v, ok := ParseNodeID(chrom); ok {
		return v, true
	}
	if v, err := strconv.ParseUint(strings.TrimSpace(pos), 10, 64); err == nil {
		return v, true
	}
	return 0, false
}

// Package gfa parses GFA variation graphs: segments (S lines), paths (P
// lines) and walks (W lines). Only segment lengths and path traversal order
// are retained; link topology and overlaps are ignored.
package gfa

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Step is one node visit within a path, with orientation.
type Step struct {
	Node    uint64
	Reverse bool
}

// Path is an ordered traversal of graph nodes representing one
// haplotype or reference sequence.
type Path struct {
	Name  string
	Steps []Step
}

// Graph holds the parts of a GFA file needed for path coordinate
// extraction: segment lengths and path traversals.
type Graph struct {
	// SegLen maps segment id to sequence length in bases.
	SegLen map[uint64]int
	Paths  []Path
	// Diagnostics collects malformed-line messages. Malformed lines are
	// skipped, not fatal.
	Diagnostics []string
}

// ParseFile parses a GFA file. Supports gzipped input (.gfa.gz).
func ParseFile(path string) (*Graph, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gfa file: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	return Parse(r)
}

// Parse parses GFA content from a reader.
func Parse(r io.Reader) (*Graph, error) {
	g := &Graph{SegLen: make(map[uint64]int)}

	scanner := bufio.NewScanner(r)
	// Segment lines can carry whole chromosome sequences.
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		switch line[0] {
		case 'S':
			g.parseSegment(line, lineNo)
		case 'P':
			g.parsePath(line, lineNo)
		case 'W':
			g.parseWalk(line, lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read gfa: %w", err)
	}

	return g, nil
}

func (g *Graph) diag(lineNo int, format string, args ...any) {
	g.Diagnostics = append(g.Diagnostics,
		fmt.Sprintf("line %d: %s", lineNo, fmt.Sprintf(format, args...)))
}

// parseSegment handles "S <id> <seq> [tags...]". Length is the sequence
// length, or the LN:i: tag when the sequence is elided with "*".
func (g *Graph) parseSegment(line string, lineNo int) {
	fields := strings.Split(line, "\t")
	if len(fields) < 3 {
		g.diag(lineNo, "segment line has %d fields, want at least 3", len(fields))
		return
	}
	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		g.diag(lineNo, "segment id %q is not numeric", fields[1])
		return
	}
	if fields[2] != "*" {
		g.SegLen[id] = len(fields[2])
		return
	}
	for _, tag := range fields[3:] {
		if v, ok := strings.CutPrefix(tag, "LN:i:"); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				g.diag(lineNo, "segment %d has invalid LN tag %q", id, v)
				return
			}
			g.SegLen[id] = n
			return
		}
	}
	g.diag(lineNo, "segment %d has no sequence and no LN tag", id)
}

// parsePath handles "P <name> <seg1+,seg2-,...> <overlaps>".
func (g *Graph) parsePath(line string, lineNo int) {
	fields := strings.Split(line, "\t")
	if len(fields) < 3 {
		g.diag(lineNo, "path line has %d fields, want at least 3", len(fields))
		return
	}
	name := fields[1]
	segs := strings.Split(fields[2], ",")
	steps := make([]Step, 0, len(segs))
	for _, s := range segs {
		if s == "" {
			continue
		}
		orient := s[len(s)-1]
		if orient != '+' && orient != '-' {
			g.diag(lineNo, "path %s: step %q has no orientation", name, s)
			return
		}
		id, err := strconv.ParseUint(s[:len(s)-1], 10, 64)
		if err != nil {
			g.diag(lineNo, "path %s: step id %q is not numeric", name, s)
			return
		}
		steps = append(steps, Step{Node: id, Reverse: orient == '-'})
	}
	g.Paths = append(g.Paths, Path{Name: name, Steps: steps})
}

// parseWalk handles "W <sample> <hap> <seq> <start> <end> <walk>" and
// converts the walk into a path with a PanSN-style name (sample#hap#seq),
// so P and W graphs are handled uniformly downstream.
func (g *Graph) parseWalk(line string, lineNo int) {
	fields := strings.Split(line, "\t")
	if len(fields) < 7 {
		g.diag(lineNo, "walk line has %d fields, want 7", len(fields))
		return
	}
	name := fields[1] + "#" + fields[2] + "#" + fields[3]
	walk := fields[6]

	var steps []Step
	for len(walk) > 0 {
		orient := walk[0]
		if orient != '>' && orient != '<' {
			g.diag(lineNo, "walk %s: unexpected orientation byte %q", name, orient)
			return
		}
		walk = walk[1:]
		end := strings.IndexAny(walk, "><")
		tok := walk
		if end >= 0 {
			tok = walk[:end]
			walk = walk[end:]
		} else {
			walk = ""
		}
		id, err := strconv.ParseUint(tok, 10, 64)
		if err != nil {
			g.diag(lineNo, "walk %s: step id %q is not numeric", name, tok)
			return
		}
		steps = append(steps, Step{Node: id, Reverse: orient == '<'})
	}
	g.Paths = append(g.Paths, Path{Name: name, Steps: steps})
}

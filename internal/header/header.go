// Package header synthesizes VCF header meta-lines: contig lines from the
// path index and INFO/FORMAT lines inferred from the body.
package header

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/exascience/pargo/parallel"

	"github.com/inodb/pathvcf/internal/chrom"
	"github.com/inodb/pathvcf/internal/vcf"
)

// valueKind classifies observed field values.
type valueKind int

const (
	kindInt valueKind = iota
	kindFloat
	kindString
)

func classify(tok string) valueKind {
	if tok == "" || tok == "." {
		return kindString
	}
	if _, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return kindInt
	}
	if _, err := strconv.ParseFloat(tok, 64); err == nil {
		return kindFloat
	}
	return kindString
}

// keyStats aggregates observations for one INFO or FORMAT key.
type keyStats struct {
	seenAsFlag bool
	anyFloat   bool
	anyString  bool
	multi      bool // observed with multiple comma-separated values
	samples    int
}

func (s *keyStats) observe(value string) {
	s.samples++
	if value == "" {
		return
	}
	vals := strings.Split(value, ",")
	if len(vals) > 1 {
		s.multi = true
	}
	for _, v := range vals {
		switch classify(v) {
		case kindFloat:
			s.anyFloat = true
		case kindString:
			s.anyString = true
		}
	}
}

func (s *keyStats) merge(o *keyStats) {
	s.seenAsFlag = s.seenAsFlag || o.seenAsFlag
	s.anyFloat = s.anyFloat || o.anyFloat
	s.anyString = s.anyString || o.anyString
	s.multi = s.multi || o.multi
	s.samples += o.samples
}

// typeName maps aggregated observations to a VCF Type.
func (s *keyStats) typeName() string {
	if s.seenAsFlag {
		return "Flag"
	}
	if s.anyString {
		return "String"
	}
	if s.anyFloat {
		return "Float"
	}
	return "Integer"
}

// number maps aggregated observations to a VCF Number: "1" unless multiple
// comma-separated values were observed, "0" for flags.
func (s *keyStats) number() string {
	if s.seenAsFlag {
		return "0"
	}
	if s.multi {
		return "."
	}
	return "1"
}

// Scan is the union of INFO and FORMAT keys observed in the body.
type Scan struct {
	Info   map[string]*keyStats
	Format map[string]*keyStats
}

func newScan() *Scan {
	return &Scan{
		Info:   make(map[string]*keyStats),
		Format: make(map[string]*keyStats),
	}
}

func (s *Scan) merge(o *Scan) {
	for k, v := range o.Info {
		if have, ok := s.Info[k]; ok {
			have.merge(v)
		} else {
			s.Info[k] = v
		}
	}
	for k, v := range o.Format {
		if have, ok := s.Format[k]; ok {
			have.merge(v)
		} else {
			s.Format[k] = v
		}
	}
}

// addLine folds one data line into the scan.
func (s *Scan) addLine(line string) {
	if line == "" || line[0] == '#' {
		return
	}
	fields := strings.Split(line, "\t")
	if len(fields) < 8 {
		return
	}

	if info := fields[7]; info != "." {
		for _, item := range strings.Split(info, ";") {
			if item == "" {
				continue
			}
			k, v, hasValue := strings.Cut(item, "=")
			ks, ok := s.Info[k]
			if !ok {
				ks = &keyStats{}
				s.Info[k] = ks
			}
			if hasValue {
				ks.observe(v)
			} else {
				ks.samples++
				ks.seenAsFlag = true
			}
		}
	}

	if len(fields) < 10 {
		return
	}
	keys := strings.Split(fields[8], ":")
	for _, sample := range fields[9:] {
		vals := strings.Split(sample, ":")
		for i, k := range keys {
			if k == "" || i >= len(vals) {
				continue
			}
			ks, ok := s.Format[k]
			if !ok {
				ks = &keyStats{}
				s.Format[k] = ks
			}
			ks.observe(vals[i])
		}
	}
}

// scanGrainSize is the number of lines below which ScanBody stops
// splitting work.
const scanGrainSize = 8192

// ScanBody collects key statistics over all data lines. Halves of the
// input are scanned concurrently and merged; merging is commutative over
// disjoint line ranges, so the result is independent of scheduling.
func ScanBody(lines []string) *Scan {
	if len(lines) <= scanGrainSize {
		s := newScan()
		for _, l := range lines {
			s.addLine(l)
		}
		return s
	}
	half := len(lines) / 2
	var left, right *Scan
	parallel.Do(
		func() { left = ScanBody(lines[:half]) },
		func() { right = ScanBody(lines[half:]) },
	)
	left.merge(right)
	return left
}

// Synthesizer assembles a complete VCF header from an existing header
// block, a body scan and the contig table.
type Synthesizer struct {
	// Contigs maps path name to length (maximum interval end offset).
	Contigs map[string]uint64
	// Level is the ignore level applied to contig names before emission.
	Level chrom.Level
}

const fixedColumnHeader = "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT"

// Build returns the full header line list: fileformat, source, contig
// lines, carried-over meta definitions, inferred INFO and FORMAT lines,
// and the column header.
func (y *Synthesizer) Build(existing *vcf.Header, scan *Scan) []string {
	var out []string

	fileformat := "##fileformat=VCFv4.2"
	for _, l := range existing.Meta {
		if strings.HasPrefix(l, "##fileformat=") {
			fileformat = l
			break
		}
	}
	out = append(out, fileformat, "##source=pathvcf")

	out = append(out, y.contigLines()...)

	existingInfo := make(map[string]bool)
	existingFormat := make(map[string]bool)
	for _, l := range existing.Meta {
		if id, ok := metaID(l, "##INFO=<ID="); ok {
			existingInfo[id] = true
		}
		if id, ok := metaID(l, "##FORMAT=<ID="); ok {
			existingFormat[id] = true
		}
		if strings.HasPrefix(l, "##INFO=<") || strings.HasPrefix(l, "##FORMAT=<") || strings.HasPrefix(l, "##FILTER=<") {
			out = append(out, l)
		}
	}

	for _, k := range sortedKeys(scan.Info) {
		if existingInfo[k] {
			continue
		}
		ks := scan.Info[k]
		out = append(out, fmt.Sprintf(
			"##INFO=<ID=%s,Number=%s,Type=%s,Description=\"Inferred from body\">",
			k, ks.number(), ks.typeName()))
	}
	for _, k := range sortedKeys(scan.Format) {
		if existingFormat[k] {
			continue
		}
		ks := scan.Format[k]
		out = append(out, fmt.Sprintf(
			"##FORMAT=<ID=%s,Number=%s,Type=%s,Description=\"Inferred from FORMAT column\">",
			k, ks.number(), ks.typeName()))
	}

	if existing.HasColumn() {
		out = append(out, existing.Column)
	} else {
		out = append(out, fixedColumnHeader)
	}

	return out
}

// contigLines emits one ##contig line per distinct normalized path name,
// aggregating lengths by maximum when normalization merges names.
func (y *Synthesizer) contigLines() []string {
	norm := make(map[string]uint64)
	for name, length := range y.Contigs {
		id, keep := chrom.Normalize(name, y.Level)
		if !keep {
			continue
		}
		if length > norm[id] {
			norm[id] = length
		}
	}

	ids := make([]string, 0, len(norm))
	for id := range norm {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		if length := norm[id]; length > 0 {
			lines = append(lines, fmt.Sprintf("##contig=<ID=%s,length=%d>", id, length))
		} else {
			lines = append(lines, fmt.Sprintf("##contig=<ID=%s>", id))
		}
	}
	return lines
}

func metaID(line, prefix string) (string, bool) {
	rest, ok := strings.CutPrefix(line, prefix)
	if !ok {
		return "", false
	}
	if i := strings.IndexByte(rest, ','); i >= 0 {
		return rest[:i], true
	}
	if i := strings.IndexByte(rest, '>'); i >= 0 {
		return rest[:i], true
	}
	return rest, true
}

func sortedKeys(m map[string]*keyStats) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

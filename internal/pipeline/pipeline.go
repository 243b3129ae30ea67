// Package pipeline streams VCF data lines through node-to-path resolution,
// skip filtering and contig-name normalization, under a deterministic
// parallel execution model: output bytes are identical for any worker count.
package pipeline

import (
	"io"

	"go.uber.org/zap"

	"github.com/inodb/pathvcf/internal/chrom"
	"github.com/inodb/pathvcf/internal/resolve"
	"github.com/inodb/pathvcf/internal/vcf"
)

// unitSize is the number of data lines per work unit.
const unitSize = 4096

// Options configures a record pipeline.
type Options struct {
	Resolver *resolve.Resolver
	Skip     chrom.SkipFilter
	Level    chrom.Level
	// Workers is the pool size; 0 means one worker per CPU.
	Workers int
}

// Stats summarizes one pipeline run.
type Stats struct {
	// Total counts data lines that passed the skip filter.
	Total uint64
	// Replaced counts records whose CHROM was rewritten to a path name.
	Replaced uint64
	// Unmapped counts records resolvable in neither source; their original
	// CHROM passed through (possibly normalized).
	Unmapped uint64
	// Skipped counts records dropped by the skip filter or the ignore level.
	Skipped uint64
	// Malformed counts lines whose field count disagreed with the header.
	Malformed uint64
}

func (s *Stats) add(o Stats) {
	s.Total += o.Total
	s.Replaced += o.Replaced
	s.Unmapped += o.Unmapped
	s.Skipped += o.Skipped
	s.Malformed += o.Malformed
}

// Pipeline is the streaming record transform.
type Pipeline struct {
	opts   Options
	logger *zap.Logger
	// want is the declared header column count, fixed before workers start.
	want int
}

// New creates a pipeline with the given options.
func New(opts Options) *Pipeline {
	return &Pipeline{opts: opts, logger: zap.NewNop()}
}

// SetLogger sets the logger for diagnostics and summaries.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Run streams all data lines of r through the transform and calls emit for
// every surviving line, in input order. Workers each own a disjoint slice
// of lines and write into a private result slot; a single merge pass emits
// slots in sequence order, so output is byte-identical to sequential
// execution. An emit error stops dispatch of new units; in-flight units
// finish and are discarded.
func (p *Pipeline) Run(r *vcf.Reader, emit func(line string) error) (Stats, error) {
	p.want = r.Header().NumFields()

	units := make(chan workUnit, 4)
	stop := make(chan struct{})
	var readErr error

	go func() {
		defer close(units)
		seq := 0
		for {
			lines := make([]string, 0, unitSize)
			first := r.LineNumber() + 1
			for len(lines) < unitSize {
				line, err := r.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					readErr = err
					return
				}
				lines = append(lines, line)
			}
			if len(lines) == 0 {
				return
			}
			select {
			case units <- workUnit{Seq: seq, Lines: lines, FirstLine: first}:
			case <-stop:
				return
			}
			seq++
			if len(lines) < unitSize {
				return
			}
		}
	}()

	results := p.runWorkers(units, p.opts.Workers)

	var stats Stats
	err := orderedCollect(results, stop, func(res workResult) error {
		stats.add(res.Stats)
		for _, d := range res.Diags {
			p.logger.Warn("malformed vcf line", zap.String("detail", d))
		}
		for _, line := range res.Out {
			if err := emit(line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return stats, err
	}
	if readErr != nil {
		return stats, readErr
	}
	return stats, nil
}

// transformUnit applies the per-line transform to one unit.
func (p *Pipeline) transformUnit(u workUnit) workResult {
	res := workResult{Seq: u.Seq, Out: make([]string, 0, len(u.Lines))}
	want := p.want
	for i, line := range u.Lines {
		out, keep := p.transformLine(line, want, u.FirstLine+i, &res)
		if keep {
			res.Out = append(res.Out, out)
		}
	}
	return res
}

// transformLine processes one data line: skip filter on the raw CHROM
// first, then node resolution and normalization. Returns the output line
// and whether it survives.
func (p *Pipeline) transformLine(line string, want, lineNo int, res *workResult) (string, bool) {
	rec, perr := vcf.ParseRecord(line, want, lineNo)
	if rec == nil {
		res.Stats.Malformed++
		res.Diags = append(res.Diags, perr.Error())
		return "", false
	}

	raw := rec.Chrom()
	if p.opts.Skip.Match(raw) {
		res.Stats.Skipped++
		return "", false
	}

	if perr != nil {
		// Field count disagrees with the header: pass through verbatim.
		res.Stats.Malformed++
		res.Diags = append(res.Diags, perr.Error())
		return line, true
	}

	res.Stats.Total++

	if node, ok := resolve.NodeID(raw, rec.Pos()); ok {
		if path, found := p.opts.Resolver.Resolve(node); found {
			norm, keep := chrom.Normalize(path, p.opts.Level)
			if !keep {
				res.Stats.Skipped++
				return "", false
			}
			rec.SetChrom(norm)
			res.Stats.Replaced++
			return rec.String(), true
		}
	}

	// Unresolvable in both sources: the original CHROM passes through,
	// still subject to the ignore level.
	norm, keep := chrom.Normalize(raw, p.opts.Level)
	if !keep {
		res.Stats.Skipped++
		return "", false
	}
	rec.SetChrom(norm)
	res.Stats.Unmapped++
	return rec.String(), true
}

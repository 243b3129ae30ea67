package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/pathvcf/internal/chrom"
	"github.com/inodb/pathvcf/internal/pathindex"
	"github.com/inodb/pathvcf/internal/pipeline"
	"github.com/inodb/pathvcf/internal/refstore"
	"github.com/inodb/pathvcf/internal/resolve"
	"github.com/inodb/pathvcf/internal/sorter"
	"github.com/inodb/pathvcf/internal/vcf"
)

type alignOptions struct {
	vcfPath       string
	alignmentPath string
	referencePath string
	skip          string
	ignore        int
	sort          bool
	prefix        string
	reverse       bool
	threads       int
	noHeader      bool
	output        string
}

func newAlignCmd() *cobra.Command {
	var opts alignOptions

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Rewrite VCF CHROM fields to pangenome path names",
		Long: `Resolve each record's node id (from CHROM, or POS as fallback) to a path
name via the alignment table, with the extracted reference table as
fallback, then filter and canonicalize the result.`,
		Example: `  pathvcf align --vcf calls.vcf --alignment aln.tsv
  pathvcf align --vcf calls.vcf --alignment aln.tsv --reference reference.tsv --sort
  pathvcf align --vcf calls.vcf --alignment aln.tsv --skip decoy,random --ignore 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ignore = configInt(cmd, "ignore", "ignore", opts.ignore)
			opts.threads = configInt(cmd, "threads", "threads", opts.threads)
			return runAlign(opts)
		},
	}

	cmd.Flags().StringVar(&opts.vcfPath, "vcf", "", "Input VCF file (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.alignmentPath, "alignment", "", "Alignment table (tab-delimited, node in column 0, path in column 4)")
	cmd.Flags().StringVar(&opts.referencePath, "reference", "", "Reference table from 'pathvcf extract' (.tsv or .duckdb), used as fallback")
	cmd.Flags().StringVar(&opts.skip, "skip", "", "Comma-separated substrings; records whose CHROM contains one are dropped")
	cmd.Flags().IntVar(&opts.ignore, "ignore", int(chrom.DefaultLevel), "Contig name strictness level (0-5)")
	cmd.Flags().BoolVar(&opts.sort, "sort", false, "Sort output records by the key column")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "Sort key: column name from the header or a 0-based index (default POS)")
	cmd.Flags().BoolVar(&opts.reverse, "reverse", false, "Sort descending")
	cmd.Flags().IntVar(&opts.threads, "threads", 0, "Worker count (0 = all CPUs)")
	cmd.Flags().BoolVar(&opts.noHeader, "no-header", false, "Do not write the header block")
	cmd.Flags().StringVar(&opts.output, "output", "", "Output VCF file (default: <input>.replaced.vcf)")
	cmd.MarkFlagRequired("vcf")
	cmd.MarkFlagRequired("alignment")

	return cmd
}

func runAlign(opts alignOptions) error {
	level, err := chrom.ParseLevel(opts.ignore)
	if err != nil {
		return err
	}
	applyThreads(opts.threads)

	table, err := readAlignmentFile(opts.alignmentPath)
	if err != nil {
		return err
	}
	logger.Info("alignment table loaded",
		zap.String("file", opts.alignmentPath),
		zap.Int("nodes", table.Len()))
	if table.Collisions > 0 {
		logger.Warn("duplicate node mappings in alignment table; first occurrence wins",
			zap.Int("collisions", table.Collisions))
	}
	logDiagnostics(opts.alignmentPath, table.Diagnostics)

	var reference resolve.NodeSource
	if opts.referencePath != "" {
		reference, err = openReferenceSource(opts.referencePath)
		if err != nil {
			return err
		}
	}

	reader, err := vcf.NewReader(opts.vcfPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	// Resolve the sort key once, up front, so a bad key fails before any
	// output is produced.
	keyIdx := -1
	if opts.sort {
		keyIdx, err = sorter.ResolveKey(opts.prefix, reader.Header().Columns())
		if err != nil {
			return err
		}
	}

	output := opts.output
	if output == "" {
		output = defaultOutput(opts.vcfPath, ".replaced.vcf")
	}
	writer, err := vcf.NewWriter(output)
	if err != nil {
		return err
	}

	if !opts.noHeader {
		if err := writer.WriteHeader(reader.Header()); err != nil {
			writer.Close()
			return err
		}
	}

	p := pipeline.New(pipeline.Options{
		Resolver: resolve.New(table, reference),
		Skip:     chrom.NewSkipFilter(opts.skip),
		Level:    level,
		Workers:  opts.threads,
	})
	p.SetLogger(logger)

	var stats pipeline.Stats
	if opts.sort {
		var buffered []string
		stats, err = p.Run(reader, func(line string) error {
			buffered = append(buffered, line)
			return nil
		})
		if err == nil {
			sorter.Sort(buffered, keyIdx, opts.reverse)
			for _, line := range buffered {
				if werr := writer.WriteLine(line); werr != nil {
					err = werr
					break
				}
			}
		}
	} else {
		stats, err = p.Run(reader, writer.WriteLine)
	}
	if err != nil {
		writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	logger.Info("align complete",
		zap.String("output", output),
		zap.Uint64("total", stats.Total),
		zap.Uint64("replaced", stats.Replaced),
		zap.Uint64("unmapped", stats.Unmapped),
		zap.Uint64("skipped", stats.Skipped),
		zap.Uint64("malformed", stats.Malformed))
	return nil
}

func readAlignmentFile(path string) (*resolve.AlignmentTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open alignment table: %w", err)
	}
	defer f.Close()
	return resolve.ReadAlignment(f)
}

// openReferenceSource loads the node→path fallback from a reference TSV or
// a DuckDB store produced by extract.
func openReferenceSource(path string) (resolve.NodeSource, error) {
	if strings.HasSuffix(path, ".duckdb") || strings.HasSuffix(path, ".db") {
		store, err := refstore.Open(path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		paths, err := store.NodePaths()
		if err != nil {
			return nil, err
		}
		logger.Info("reference store loaded",
			zap.String("file", path),
			zap.Int("nodes", len(paths)))
		return resolve.MapSource(paths), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference table: %w", err)
	}
	defer f.Close()
	idx, err := pathindex.ReadReference(f)
	if err != nil {
		return nil, err
	}
	logger.Info("reference table loaded",
		zap.String("file", path),
		zap.Int("intervals", len(idx.Intervals)))
	logDiagnostics(path, idx.Diagnostics)
	return idx, nil
}

func logDiagnostics(file string, diags []string) {
	for _, d := range diags {
		logger.Warn("parse diagnostic", zap.String("file", file), zap.String("detail", d))
	}
}

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/pathvcf/internal/chrom"
	"github.com/inodb/pathvcf/internal/header"
	"github.com/inodb/pathvcf/internal/pathindex"
	"github.com/inodb/pathvcf/internal/refstore"
	"github.com/inodb/pathvcf/internal/vcf"
)

type headerOptions struct {
	vcfPath       string
	referencePath string
	ignore        int
	threads       int
	output        string
}

func newHeaderCmd() *cobra.Command {
	var opts headerOptions

	cmd := &cobra.Command{
		Use:   "header",
		Short: "Synthesize contig and FORMAT meta-lines for a VCF",
		Long: `Infer INFO and FORMAT definitions from the body, emit one contig line per
path in the reference table (length = maximum interval end offset), and
write the VCF back with the completed header. Existing definitions are
preserved; only missing ones are added.`,
		Example: `  pathvcf header --vcf calls.vcf --reference reference.tsv
  pathvcf header --vcf calls.vcf --reference ref.duckdb --ignore 4`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Unlike align, header defaults to level 0: contig names are
			// only restricted when asked.
			if !cmd.Flags().Changed("ignore") {
				opts.ignore = 0
			}
			opts.threads = configInt(cmd, "threads", "threads", opts.threads)
			return runHeader(opts)
		},
	}

	cmd.Flags().StringVar(&opts.vcfPath, "vcf", "", "Input VCF file (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.referencePath, "reference", "", "Reference table from 'pathvcf extract' (.tsv or .duckdb)")
	cmd.Flags().IntVar(&opts.ignore, "ignore", 0, "Contig name strictness level (0-5)")
	cmd.Flags().IntVar(&opts.threads, "threads", 0, "Worker count (0 = all CPUs)")
	cmd.Flags().StringVar(&opts.output, "output", "", "Output VCF file (default: <input>.withheader.vcf)")
	cmd.MarkFlagRequired("vcf")
	cmd.MarkFlagRequired("reference")

	return cmd
}

func runHeader(opts headerOptions) error {
	level, err := chrom.ParseLevel(opts.ignore)
	if err != nil {
		return err
	}
	applyThreads(opts.threads)

	contigs, err := loadContigs(opts.referencePath)
	if err != nil {
		return err
	}
	if len(contigs) == 0 {
		logger.Warn("reference table produced no contigs; emitting header without lengths",
			zap.String("file", opts.referencePath))
	}

	reader, err := vcf.NewReader(opts.vcfPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	var body []string
	for {
		line, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		body = append(body, line)
	}

	scan := header.ScanBody(body)
	synth := header.Synthesizer{Contigs: contigs, Level: level}
	lines := synth.Build(reader.Header(), scan)

	output := opts.output
	if output == "" {
		output = defaultOutput(opts.vcfPath, ".withheader.vcf")
	}
	writer, err := vcf.NewWriter(output)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if err := writer.WriteLine(l); err != nil {
			writer.Close()
			return err
		}
	}
	for _, l := range body {
		if err := writer.WriteLine(l); err != nil {
			writer.Close()
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	logger.Info("header complete",
		zap.String("output", output),
		zap.Int("contigs", len(contigs)),
		zap.Int("records", len(body)))
	return nil
}

// loadContigs reads path→length from a reference TSV or a DuckDB store.
func loadContigs(path string) (map[string]uint64, error) {
	if strings.HasSuffix(path, ".duckdb") || strings.HasSuffix(path, ".db") {
		store, err := refstore.Open(path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.ContigLengths()
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
	logDiagnostics(path, idx.Diagnostics)
	return idx.ContigLengths(), nil
}

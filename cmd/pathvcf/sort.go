package main

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/pathvcf/internal/sorter"
	"github.com/inodb/pathvcf/internal/vcf"
)

type sortOptions struct {
	vcfPath string
	prefix  string
	reverse bool
	output  string
}

func newSortCmd() *cobra.Command {
	var opts sortOptions

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Stable sort of VCF records by a key column",
		Long: `Sort the data lines of a VCF by a key column, resolved once against the
header. Comparison is numeric when every key value is numeric, bytewise
otherwise; records with equal keys keep their original relative order.`,
		Example: `  pathvcf sort --vcf calls.vcf
  pathvcf sort --vcf calls.vcf --prefix CHROM --reverse`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSort(opts)
		},
	}

	cmd.Flags().StringVar(&opts.vcfPath, "vcf", "", "Input VCF file (use '-' for stdin)")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "Sort key: column name from the header or a 0-based index (default POS)")
	cmd.Flags().BoolVar(&opts.reverse, "reverse", false, "Sort descending")
	cmd.Flags().StringVar(&opts.output, "output", "", "Output VCF file (default: <input>.sorted.vcf)")
	cmd.MarkFlagRequired("vcf")

	return cmd
}

func runSort(opts sortOptions) error {
	reader, err := vcf.NewReader(opts.vcfPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	keyIdx, err := sorter.ResolveKey(opts.prefix, reader.Header().Columns())
	if err != nil {
		return err
	}

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

	sorter.Sort(body, keyIdx, opts.reverse)

	output := opts.output
	if output == "" {
		output = defaultOutput(opts.vcfPath, ".sorted.vcf")
	}
	writer, err := vcf.NewWriter(output)
	if err != nil {
		return err
	}
	if err := writer.WriteHeader(reader.Header()); err != nil {
		writer.Close()
		return err
	}
	for _, line := range body {
		if err := writer.WriteLine(line); err != nil {
			writer.Close()
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	logger.Info("sort complete",
		zap.String("output", output),
		zap.Int("records", len(body)))
	return nil
}

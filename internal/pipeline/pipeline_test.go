package pipeline

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/pathvcf/internal/chrom"
	"github.com/inodb/pathvcf/internal/pathindex"
	"github.com/inodb/pathvcf/internal/resolve"
	"github.com/inodb/pathvcf/internal/vcf"
)

const vcfHeader = "##fileformat=VCFv4.2\n#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n"

func alignmentTable(t *testing.T, rows ...string) *resolve.AlignmentTable {
	t.Helper()
	in := "node\tstart\tend\tstrand\tpath\n" + strings.Join(rows, "\n")
	table, err := resolve.ReadAlignment(strings.NewReader(in))
	require.NoError(t, err)
	return table
}

func runPipeline(t *testing.T, opts Options, input string) ([]string, Stats) {
	t.Helper()
	r, err := vcf.NewReaderFrom(strings.NewReader(input))
	require.NoError(t, err)

	p := New(opts)
	var out []string
	stats, err := p.Run(r, func(line string) error {
		out = append(out, line)
		return nil
	})
	require.NoError(t, err)
	return out, stats
}

func dataLine(chromField string, pos int) string {
	return fmt.Sprintf("%s\t%d\t.\tA\tT\t60\tPASS\tDP=9", chromField, pos)
}

func TestRun_ReplacesChromViaAlignment(t *testing.T) {
	// alignment maps node 5 to chr1; record CHROM is the node id
	table := alignmentTable(t, "5\t0\t10\t+\tchr1")
	input := vcfHeader + dataLine("5", 100) + "\n"

	out, stats := runPipeline(t, Options{
		Resolver: resolve.New(table, nil),
		Level:    0,
	}, input)

	require.Len(t, out, 1)
	assert.Equal(t, "chr1\t100\t.\tA\tT\t60\tPASS\tDP=9", out[0])
	assert.EqualValues(t, 1, stats.Replaced)
	assert.EqualValues(t, 0, stats.Unmapped)
}

func TestRun_ReferenceFallback(t *testing.T) {
	table := alignmentTable(t, "5\t0\t10\t+\tchr1")
	ref, err := pathindex.ReadReference(strings.NewReader(
		"node\tstart\tend\tpath\n6\t0\t10\tchr2\n"))
	require.NoError(t, err)

	input := vcfHeader + dataLine("5", 1) + "\n" + dataLine("6", 2) + "\n"
	out, stats := runPipeline(t, Options{
		Resolver: resolve.New(table, ref),
		Level:    0,
	}, input)

	require.Len(t, out, 2)
	assert.True(t, strings.HasPrefix(out[0], "chr1\t"))
	assert.True(t, strings.HasPrefix(out[1], "chr2\t"))
	assert.EqualValues(t, 2, stats.Replaced)
}

func TestRun_UnresolvedPassesThrough(t *testing.T) {
	table := alignmentTable(t)
	input := vcfHeader + dataLine("999", 100) + "\n"

	out, stats := runPipeline(t, Options{
		Resolver: resolve.New(table, nil),
		Level:    0,
	}, input)

	require.Len(t, out, 1)
	assert.True(t, strings.HasPrefix(out[0], "999\t"))
	assert.EqualValues(t, 1, stats.Unmapped)
}

// Aligning at level 0 against a reference whose path names equal the
// original CHROM values leaves every CHROM unchanged.
func TestRun_IdentityRoundTrip(t *testing.T) {
	var refRows, body []string
	refRows = append(refRows, "node\tstart\tend\tpath")
	for i := 1; i <= 20; i++ {
		refRows = append(refRows, fmt.Sprintf("%d\t0\t10\t%d", i, i))
		body = append(body, dataLine(fmt.Sprintf("%d", i), i*10))
	}
	ref, err := pathindex.ReadReference(strings.NewReader(strings.Join(refRows, "\n")))
	require.NoError(t, err)

	input := vcfHeader + strings.Join(body, "\n") + "\n"
	out, _ := runPipeline(t, Options{
		Resolver: resolve.New(nil, ref),
		Level:    0,
	}, input)

	assert.Equal(t, body, out)
}

func TestRun_SkipFilterOnRawChrom(t *testing.T) {
	// Skip matches the pre-normalization CHROM, before any replacement.
	table := alignmentTable(t, "5\t0\t10\t+\tchr1")
	input := vcfHeader +
		dataLine("5", 1) + "\n" +
		dataLine("decoy_5", 2) + "\n" +
		dataLine("chr9_decoy", 3) + "\n"

	out, stats := runPipeline(t, Options{
		Resolver: resolve.New(table, nil),
		Skip:     chrom.NewSkipFilter("decoy"),
		Level:    0,
	}, input)

	require.Len(t, out, 1)
	assert.True(t, strings.HasPrefix(out[0], "chr1\t"))
	assert.EqualValues(t, 2, stats.Skipped)
	for _, line := range out {
		assert.NotContains(t, strings.SplitN(line, "\t", 2)[0], "decoy")
	}
}

func TestRun_IgnoreLevelDropsNonStandard(t *testing.T) {
	table := alignmentTable(t,
		"1\t0\t10\t+\tchr1",
		"2\t0\t10\t+\tscaffold_77",
	)
	input := vcfHeader + dataLine("1", 1) + "\n" + dataLine("2", 2) + "\n"

	out, stats := runPipeline(t, Options{
		Resolver: resolve.New(table, nil),
		Level:    4,
	}, input)

	require.Len(t, out, 1)
	assert.True(t, strings.HasPrefix(out[0], "chr1\t"))
	assert.EqualValues(t, 1, stats.Replaced)
	assert.EqualValues(t, 1, stats.Skipped)
}

func TestRun_Level5StripsPrefix(t *testing.T) {
	table := alignmentTable(t, "1\t0\t10\t+\tGRCh38.chrX_alt")
	input := vcfHeader + dataLine("1", 1) + "\n"

	out, _ := runPipeline(t, Options{
		Resolver: resolve.New(table, nil),
		Level:    5,
	}, input)

	require.Len(t, out, 1)
	assert.True(t, strings.HasPrefix(out[0], "X\t"))
}

func TestRun_MalformedLinePassesThroughVerbatim(t *testing.T) {
	table := alignmentTable(t, "5\t0\t10\t+\tchr1")
	short := "5\t1\t.\tA" // four fields, header declares eight
	input := vcfHeader + short + "\n" + dataLine("5", 2) + "\n"

	out, stats := runPipeline(t, Options{
		Resolver: resolve.New(table, nil),
		Level:    0,
	}, input)

	require.Len(t, out, 2)
	assert.Equal(t, short, out[0])
	assert.True(t, strings.HasPrefix(out[1], "chr1\t"))
	assert.EqualValues(t, 1, stats.Malformed)
}

// Output bytes are identical regardless of worker count.
func TestRun_WorkerCountDeterminism(t *testing.T) {
	table := alignmentTable(t,
		"1\t0\t10\t+\tchr1",
		"2\t0\t10\t+\tchr2",
		"3\t0\t10\t+\tscaffold_9",
	)

	var body strings.Builder
	for i := 0; i < 25000; i++ {
		fmt.Fprintf(&body, "%d\t%d\t.\tA\tT\t60\tPASS\tDP=%d\n", i%5, i, i)
	}
	input := vcfHeader + body.String()

	var outputs [][]string
	for _, workers := range []int{1, 8} {
		out, _ := runPipeline(t, Options{
			Resolver: resolve.New(table, nil),
			Level:    0,
			Workers:  workers,
		}, input)
		outputs = append(outputs, out)
	}

	assert.Equal(t, outputs[0], outputs[1])
}

func TestRun_EmitErrorStopsRun(t *testing.T) {
	table := alignmentTable(t)
	var body strings.Builder
	for i := 0; i < 20000; i++ {
		fmt.Fprintf(&body, "%d\t%d\t.\tA\tT\t60\tPASS\t.\n", i, i)
	}
	r, err := vcf.NewReaderFrom(strings.NewReader(vcfHeader + body.String()))
	require.NoError(t, err)

	p := New(Options{Resolver: resolve.New(table, nil), Level: 0, Workers: 4})
	count := 0
	_, err = p.Run(r, func(string) error {
		count++
		if count == 10 {
			return fmt.Errorf("disk full")
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 10, count)
}

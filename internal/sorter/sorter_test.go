package sorter

import (
	"fmt"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var vcfColumns = []string{"CHROM", "POS", "ID", "REF", "ALT", "QUAL", "FILTER", "INFO"}

func TestResolveKey(t *testing.T) {
	idx, err := ResolveKey("", vcfColumns)
	require.NoError(t, err)
	assert.Equal(t, 1, idx) // default POS

	idx, err = ResolveKey("CHROM", vcfColumns)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	idx, err = ResolveKey("5", vcfColumns)
	require.NoError(t, err)
	assert.Equal(t, 5, idx)

	_, err = ResolveKey("-1", vcfColumns)
	assert.Error(t, err)

	_, err = ResolveKey("NOPE", vcfColumns)
	require.Error(t, err)
	var cerr *ColumnNotFoundError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "NOPE", cerr.Column)
}

func TestResolveKey_IndexWorksWithoutHeader(t *testing.T) {
	idx, err := ResolveKey("3", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, idx)

	_, err = ResolveKey("POS", nil)
	assert.Error(t, err)
}

func TestSort_Numeric(t *testing.T) {
	lines := []string{
		"chr1\t100\t.\tA\tT",
		"chr1\t9\t.\tC\tG",
		"chr1\t1000\t.\tG\tC",
		"chr1\t50\t.\tT\tA",
	}
	Sort(lines, 1, false)

	assert.Equal(t, []string{
		"chr1\t9\t.\tC\tG",
		"chr1\t50\t.\tT\tA",
		"chr1\t100\t.\tA\tT",
		"chr1\t1000\t.\tG\tC",
	}, lines)
}

func TestSort_LexicographicWhenNonNumeric(t *testing.T) {
	// A single non-numeric key switches the whole sort to bytewise order.
	lines := []string{
		"chrB\t2\t.",
		"chrA\t10\t.",
		"chrA\t9\t.",
	}
	Sort(lines, 0, false)

	assert.Equal(t, []string{
		"chrA\t10\t.",
		"chrA\t9\t.",
		"chrB\t2\t.",
	}, lines)
}

func TestSort_Reverse(t *testing.T) {
	lines := []string{
		"chr1\t5", "chr1\t300", "chr1\t42",
	}
	Sort(lines, 1, true)
	assert.Equal(t, []string{"chr1\t300", "chr1\t42", "chr1\t5"}, lines)
}

func TestSort_StableOnEqualKeys(t *testing.T) {
	lines := []string{
		"chr2\t7\tfirst",
		"chr1\t7\tsecond",
		"chr3\t7\tthird",
		"chr1\t3\tearliest",
	}
	Sort(lines, 1, false)

	assert.Equal(t, []string{
		"chr1\t3\tearliest",
		"chr2\t7\tfirst",
		"chr1\t7\tsecond",
		"chr3\t7\tthird",
	}, lines)
}

func TestSort_MissingKeySortsAsEmpty(t *testing.T) {
	lines := []string{
		"chr1\t10\t.",
		"shortline",
		"chr1\t2\t.",
	}
	Sort(lines, 1, false)

	// the line lacking the column carries numeric key 0
	assert.Equal(t, "shortline", lines[0])
}

func TestSort_Idempotent(t *testing.T) {
	lines := make([]string, 5000)
	for i := range lines {
		lines[i] = fmt.Sprintf("chr1\t%d\tid%d", rand.Intn(1000), i)
	}

	Sort(lines, 1, false)
	once := make([]string, len(lines))
	copy(once, lines)

	Sort(lines, 1, false)
	assert.Equal(t, once, lines)
}

func TestSort_LargeInputMatchesSequentialOrder(t *testing.T) {
	// Large enough to exercise the parallel merge path.
	lines := make([]string, 60000)
	for i := range lines {
		lines[i] = fmt.Sprintf("chr1\t%d\tid%d", (i*7919)%60000, i)
	}
	Sort(lines, 1, false)

	for i := range lines {
		key, err := strconv.Atoi(field(lines[i], 1))
		require.NoError(t, err)
		assert.Equal(t, i, key, "unexpected order at %d", i)
	}
}

func TestField(t *testing.T) {
	line := "a\tb\tc"
	assert.Equal(t, "a", field(line, 0))
	assert.Equal(t, "b", field(line, 1))
	assert.Equal(t, "c", field(line, 2))
	assert.Equal(t, "", field(line, 3))
}

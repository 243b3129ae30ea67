package gfa

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SegmentsAndPaths(t *testing.T) {
	in := strings.Join([]string{
		"H\tVN:Z:1.0",
		"S\t1\tACGT",
		"S\t2\tAC",
		"S\t3\t*\tLN:i:100",
		"P\tchr1\t1+,2-,3+\t*",
		"L\t1\t+\t2\t+\t0M",
	}, "\n")

	g, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, 4, g.SegLen[1])
	assert.Equal(t, 2, g.SegLen[2])
	assert.Equal(t, 100, g.SegLen[3])

	require.Len(t, g.Paths, 1)
	p := g.Paths[0]
	assert.Equal(t, "chr1", p.Name)
	require.Len(t, p.Steps, 3)
	assert.Equal(t, Step{Node: 1}, p.Steps[0])
	assert.Equal(t, Step{Node: 2, Reverse: true}, p.Steps[1])
	assert.Equal(t, Step{Node: 3}, p.Steps[2])
	assert.Empty(t, g.Diagnostics)
}

func TestParse_WalkConvertsToPath(t *testing.T) {
	in := strings.Join([]string{
		"S\t10\tAAAA",
		"S\t11\tCC",
		"W\tHG002\t1\tchrX\t0\t6\t>10<11",
	}, "\n")

	g, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	require.Len(t, g.Paths, 1)
	p := g.Paths[0]
	assert.Equal(t, "HG002#1#chrX", p.Name)
	require.Len(t, p.Steps, 2)
	assert.Equal(t, Step{Node: 10}, p.Steps[0])
	assert.Equal(t, Step{Node: 11, Reverse: true}, p.Steps[1])
}

func TestParse_MalformedLinesCollected(t *testing.T) {
	in := strings.Join([]string{
		"S\t1\tACGT",
		"S\tfoo\tACGT",       // non-numeric id
		"S\t2\t*",            // elided sequence without LN tag
		"P\tbroken\t1x,2+\t*", // step without orientation
		"P\tok\t1+\t*",
	}, "\n")

	g, err := Parse(strings.NewReader(in))
	require.NoError(t, err)

	assert.Len(t, g.Diagnostics, 3)
	require.Len(t, g.Paths, 1)
	assert.Equal(t, "ok", g.Paths[0].Name)
}

func TestParse_EmptyInput(t *testing.T) {
	g, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, g.Paths)
	assert.Empty(t, g.SegLen)
}

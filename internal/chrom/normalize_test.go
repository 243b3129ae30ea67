package chrom

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken(t *testing.T) {
	tests := []struct {
		raw       string
		token     string
		hasSuffix bool
		found     bool
	}{
		{"chr12", "12", false, true},
		{"chrX", "X", false, true},
		{"chrx", "X", false, true},
		{"chr12_random", "12", true, true},
		{"GRCh38.chr12_random", "12", true, true},
		{"chr", "", false, true},
		{"chr_", "", true, true},
		{"scaffold42", "", false, false},
		{"CHRY", "Y", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			tok, suffix, found := Token(tt.raw)
			assert.Equal(t, tt.token, tok)
			assert.Equal(t, tt.hasSuffix, suffix)
			assert.Equal(t, tt.found, found)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw   string
		level Level
		want  string
		keep  bool
	}{
		// level 0: identity
		{"anything_at_all", 0, "anything_at_all", true},
		{"chr1", 0, "chr1", true},

		// level 1: must contain "chr"
		{"chr1", 1, "chr1", true},
		{"GRCh38.chr1", 1, "GRCh38.chr1", true},
		{"scaffold42", 1, "", false},

		// level 2: token must be digits or X/Y/M
		{"chr12", 2, "chr12", true},
		{"chrX", 2, "chrX", true},
		{"chrUn", 2, "", false},
		{"scaffold42", 2, "", false},

		// level 3: no suffix after the token
		{"chr12", 3, "chr12", true},
		{"chr12_random", 3, "", false},

		// level 4: standard human set, rewritten to chr<TOKEN>
		{"chr12", 4, "chr12", true},
		{"GRCh38.chr12_random", 4, "chr12", true},
		{"chrx", 4, "chrX", true},
		{"chr23", 4, "", false},
		{"chrUn", 4, "", false},
		{"scaffold42", 4, "", false},

		// level 5: bare token
		{"chr12", 5, "12", true},
		{"chrY", 5, "Y", true},
		{"GRCh38.chrM", 5, "M", true},
		{"chr99", 5, "", false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("level%d/%s", tt.level, tt.raw), func(t *testing.T) {
			got, keep := Normalize(tt.raw, tt.level)
			assert.Equal(t, tt.keep, keep)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Every value surviving level 4 is one of chr1..chr22, chrX, chrY, chrM.
func TestNormalize_Level4Closure(t *testing.T) {
	standard := make(map[string]bool)
	for i := 1; i <= 22; i++ {
		standard[fmt.Sprintf("chr%d", i)] = true
	}
	standard["chrX"] = true
	standard["chrY"] = true
	standard["chrM"] = true

	inputs := []string{
		"chr1", "chr22", "chr23", "chrX", "chry", "chrM", "chrMT",
		"GRCh38.chr12_random", "chrUn_KI270302v1", "scaffold42",
		"HG002#1#chr7", "node_123", "chr0",
	}
	for _, in := range inputs {
		got, keep := Normalize(in, 4)
		if keep {
			assert.True(t, standard[got], "level 4 emitted %q for %q", got, in)
		}
	}
}

func TestParseLevel(t *testing.T) {
	for n := 0; n <= 5; n++ {
		lvl, err := ParseLevel(n)
		require.NoError(t, err)
		assert.Equal(t, Level(n), lvl)
	}
	_, err := ParseLevel(6)
	assert.Error(t, err)
	_, err = ParseLevel(-1)
	assert.Error(t, err)
}

func TestIsStandardToken(t *testing.T) {
	assert.True(t, IsStandardToken("1"))
	assert.True(t, IsStandardToken("22"))
	assert.True(t, IsStandardToken("X"))
	assert.True(t, IsStandardToken("M"))
	assert.False(t, IsStandardToken("0"))
	assert.False(t, IsStandardToken("23"))
	assert.False(t, IsStandardToken("MT"))
	assert.False(t, IsStandardToken(""))
}

func TestSkipFilter(t *testing.T) {
	f := NewSkipFilter("decoy, random, ")
	assert.False(t, f.Empty())
	assert.True(t, f.Match("chr1_random"))
	assert.True(t, f.Match("hs38d1_decoy"))
	assert.False(t, f.Match("chr1"))

	empty := NewSkipFilter("")
	assert.True(t, empty.Empty())
	assert.False(t, empty.Match("anything"))
}

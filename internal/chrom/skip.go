package chrom

import "strings"

// SkipFilter drops records whose pre-normalization CHROM contains any of a
// configured set of substrings. Matching is case-sensitive.
type SkipFilter struct {
	substrings []string
}

// NewSkipFilter builds a filter from a comma-separated substring list.
// Empty entries and surrounding whitespace are discarded.
func NewSkipFilter(csv string) SkipFilter {
	var subs []string
	for _, s := range strings.Split(csv, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			subs = append(subs, s)
		}
	}
	return SkipFilter{substrings: subs}
}

// Empty reports whether the filter matches nothing.
func (f SkipFilter) Empty() bool {
	return len(f.substrings) == 0
}

// Match reports whether chrom contains any configured substring.
func (f SkipFilter) Match(chrom string) bool {
	for _, s := range f.substrings {
		if strings.Contains(chrom, s) {
			return true
		}
	}
	return false
}

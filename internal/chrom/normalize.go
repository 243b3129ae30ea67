// Package chrom canonicalizes and filters resolved contig names.
package chrom

import (
	"fmt"
	"strconv"
	"strings"
)

// Level is the canonicalization strictness applied to resolved names.
//
//	0: keep as-is (no checks)
//	1: keep only names containing "chr" (case-insensitive), unchanged
//	2: as 1, and the token after "chr" must be digits or X/Y/M
//	3: as 2, and drop when anything follows the token (e.g. "chr12_random")
//	4: keep only the standard human set {1..22, X, Y, M}; rewrite to
//	   "chr<TOKEN>", stripping extra context ("GRCh38.chr12_random" -> "chr12")
//	5: as 4, but emit the bare token without the "chr" prefix
type Level int

// DefaultLevel restricts output to the standard human chromosome set.
const DefaultLevel Level = 4

// ParseLevel validates a numeric ignore level.
func ParseLevel(n int) (Level, error) {
	if n < 0 || n > 5 {
		return 0, fmt.Errorf("ignore level %d out of range 0-5", n)
	}
	return Level(n), nil
}

// Token extracts the alphanumeric run following the last case-insensitive
// "chr" occurrence in raw. The token is uppercased unless it is all digits.
// hasSuffix reports whether anything follows the token, and found whether
// "chr" occurred at all.
func Token(raw string) (token string, hasSuffix, found bool) {
	lower := strings.ToLower(raw)
	idx := strings.LastIndex(lower, "chr")
	if idx < 0 {
		return "", false, false
	}
	after := raw[idx+3:]
	n := 0
	for n < len(after) && isAlnum(after[n]) {
		n++
	}
	if n == 0 {
		return "", after != "", true
	}
	token = after[:n]
	if !allDigits(token) {
		token = strings.ToUpper(token)
	}
	return token, n < len(after), true
}

func isAlnum(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// IsStandardToken reports whether an uppercased token names a standard
// human chromosome: 1..22, X, Y or M.
func IsStandardToken(tok string) bool {
	switch strings.ToUpper(tok) {
	case "X", "Y", "M":
		return true
	}
	n, err := strconv.Atoi(tok)
	return err == nil && allDigits(tok) && n >= 1 && n <= 22
}

// Normalize applies the ignore level to a resolved name. The second return
// value is false when the record should be dropped from output.
func Normalize(raw string, level Level) (string, bool) {
	switch level {
	case 1:
		if strings.Contains(strings.ToLower(raw), "chr") {
			return raw, true
		}
		return "", false
	case 2:
		tok, _, found := Token(raw)
		if !found || tok == "" {
			return "", false
		}
		switch tok {
		case "X", "Y", "M":
			return raw, true
		}
		if allDigits(tok) {
			return raw, true
		}
		return "", false
	case 3:
		tok, hasSuffix, found := Token(raw)
		if !found || tok == "" || hasSuffix {
			return "", false
		}
		return raw, true
	case 4:
		tok, _, found := Token(raw)
		if !found || tok == "" || !IsStandardToken(tok) {
			return "", false
		}
		return "chr" + strings.ToUpper(tok), true
	case 5:
		tok, _, found := Token(raw)
		if !found || tok == "" || !IsStandardToken(tok) {
			return "", false
		}
		return strings.ToUpper(tok), true
	default:
		// Level 0 and anything unexpected: identity.
		return raw, true
	}
}

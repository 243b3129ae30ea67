package main

import (
	"path/filepath"
	"strings"
)

// vcfStem strips a trailing .vcf or .vcf.gz from a file name.
func vcfStem(name string) string {
	if s, ok := strings.CutSuffix(name, ".vcf.gz"); ok {
		return s
	}
	if s, ok := strings.CutSuffix(name, ".vcf"); ok {
		return s
	}
	if ext := filepath.Ext(name); ext != "" {
		return strings.TrimSuffix(name, ext)
	}
	return name
}

// defaultOutput derives an output path next to the input by replacing the
// .vcf/.vcf.gz extension with the given suffix (e.g. ".replaced.vcf").
func defaultOutput(input, suffix string) string {
	if input == "-" {
		return "-"
	}
	dir := filepath.Dir(input)
	stem := vcfStem(filepath.Base(input))
	return filepath.Join(dir, stem+suffix)
}

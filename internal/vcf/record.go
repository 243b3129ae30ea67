package vcf

import (
	"fmt"
	"strings"
)

// Well-known fixed column indexes.
const (
	ChromField = 0
	PosField   = 1
	IDField    = 2
)

// Record is one VCF data line as ordered tab-delimited fields.
type Record struct {
	Fields []string
}

// ParseRecord splits a data line into fields. want is the declared header
// column count; 0 disables the count check. Lines with fewer than two
// fields cannot carry CHROM and POS and are always rejected.
func ParseRecord(line string, want, lineNo int) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 {
		return nil, &ParseError{
			Line:    lineNo,
			Message: fmt.Sprintf("expected at least 2 columns, found %d", len(fields)),
		}
	}
	if want > 0 && len(fields) != want {
		return &Record{Fields: fields}, &ParseError{
			Line:    lineNo,
			Message: fmt.Sprintf("expected %d columns per header, found %d", want, len(fields)),
		}
	}
	return &Record{Fields: fields}, nil
}

// Chrom returns the CHROM field.
func (r *Record) Chrom() string {
	return r.Fields[ChromField]
}

// Pos returns the raw POS field.
func (r *Record) Pos() string {
	return r.Fields[PosField]
}

// SetChrom replaces the CHROM field.
func (r *Record) SetChrom(chrom string) {
	r.Fields[ChromField] = chrom
}

// String renders the record back to a tab-delimited line.
func (r *Record) String() string {
	return strings.Join(r.Fields, "\t")
}

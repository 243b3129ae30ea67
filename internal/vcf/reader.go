// Package vcf provides streaming VCF reading and writing. Records are kept
// as raw tab-delimited fields; no semantic validation beyond field counts.
package vcf

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// Header is the VCF header block: meta-lines plus the #CHROM column line.
type Header struct {
	// Meta holds all "##" lines in input order.
	Meta []string
	// Column is the "#CHROM"-prefixed column header line, or empty when the
	// input carries none.
	Column string
}

// HasColumn reports whether a #CHROM column line was present.
func (h *Header) HasColumn() bool {
	return h.Column != ""
}

// Columns returns the declared column names, with the leading '#' stripped
// from CHROM. Nil when no column line was present.
func (h *Header) Columns() []string {
	if h.Column == "" {
		return nil
	}
	cols := strings.Split(h.Column, "\t")
	cols[0] = strings.TrimPrefix(cols[0], "#")
	return cols
}

// NumFields returns the declared field count per data line, or 0 when
// unknown.
func (h *Header) NumFields() int {
	if h.Column == "" {
		return 0
	}
	return strings.Count(h.Column, "\t") + 1
}

// Samples returns the sample names after the FORMAT column.
func (h *Header) Samples() []string {
	cols := h.Columns()
	if len(cols) > 9 {
		return cols[9:]
	}
	return nil
}

// ColumnIndex resolves a column name to its 0-based index.
func (h *Header) ColumnIndex(name string) (int, bool) {
	for i, c := range h.Columns() {
		if c == name {
			return i, true
		}
	}
	return 0, false
}

// Reader reads a VCF file: header block first, then raw data lines.
// Supports plain and gzipped input, sniffed by magic bytes.
type Reader struct {
	reader     *bufio.Reader
	file       *os.File
	gzipReader *gzip.Reader
	lineNumber int
	header     Header
	// pending holds a data line encountered while scanning for the header,
	// for inputs that carry no #CHROM line at all.
	pending string
	done    bool
}

// NewReader opens a VCF file for reading. "-" reads from stdin.
func NewReader(path string) (*Reader, error) {
	if path == "-" {
		return NewReaderFrom(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	r := &Reader{file: file}

	// Check for gzip magic bytes, then rewind.
	buf := make([]byte, 2)
	n, err := file.Read(buf)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read vcf header: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("seek vcf file: %w", err)
	}

	if n == 2 && buf[0] == 0x1f && buf[1] == 0x8b {
		r.gzipReader, err = gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.reader = bufio.NewReader(r.gzipReader)
	} else {
		r.reader = bufio.NewReader(file)
	}

	if err := r.readHeader(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// NewReaderFrom creates a reader from an io.Reader (e.g. stdin).
func NewReaderFrom(src io.Reader) (*Reader, error) {
	r := &Reader{reader: bufio.NewReader(src)}
	if err := r.readHeader(); err != nil {
		return nil, err
	}
	return r, nil
}

// readHeader consumes the header block. A data line before any #CHROM line
// is tolerated (headerless VCF); it is buffered and returned by the first
// Next call.
func (r *Reader) readHeader() error {
	for {
		line, err := r.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				if line == "" {
					r.done = true
					return nil
				}
			} else {
				return fmt.Errorf("read header: %w", err)
			}
		}
		r.lineNumber++
		line = strings.TrimRight(line, "\r\n")

		switch {
		case strings.HasPrefix(line, "#CHROM"):
			r.header.Column = line
			return nil
		case strings.HasPrefix(line, "#"):
			r.header.Meta = append(r.header.Meta, line)
		case line == "":
			// skip blank lines in the header block
		default:
			r.pending = line
			return nil
		}

		if r.done {
			return nil
		}
	}
}

// Header returns the parsed header block.
func (r *Reader) Header() *Header {
	return &r.header
}

// Next returns the next raw data line. Returns io.EOF when exhausted.
// Blank lines are skipped.
func (r *Reader) Next() (string, error) {
	if r.pending != "" {
		line := r.pending
		r.pending = ""
		return line, nil
	}
	for {
		if r.done {
			return "", io.EOF
		}
		line, err := r.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				r.done = true
				if line == "" {
					return "", io.EOF
				}
			} else {
				return "", fmt.Errorf("read vcf line: %w", err)
			}
		}
		r.lineNumber++
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		return line, nil
	}
}

// LineNumber returns the number of the last line read.
func (r *Reader) LineNumber() int {
	return r.lineNumber
}

// Close closes the reader and the underlying file.
func (r *Reader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// ParseError is a malformed-line error with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}

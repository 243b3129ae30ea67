package vcf

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Writer writes a VCF header block followed by data lines.
type Writer struct {
	bw   *bufio.Writer
	file *os.File
}

// NewWriter creates a writer for the given path. "-" writes to stdout.
func NewWriter(path string) (*Writer, error) {
	if path == "-" {
		return &Writer{bw: bufio.NewWriter(os.Stdout)}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return &Writer{bw: bufio.NewWriter(file), file: file}, nil
}

// NewWriterTo creates a writer over an arbitrary io.Writer.
func NewWriterTo(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriter(w)}
}

// WriteHeader writes all meta-lines and the column line, when present.
func (w *Writer) WriteHeader(h *Header) error {
	for _, m := range h.Meta {
		if err := w.WriteLine(m); err != nil {
			return err
		}
	}
	if h.Column != "" {
		return w.WriteLine(h.Column)
	}
	return nil
}

// WriteLine writes one line with a trailing newline.
func (w *Writer) WriteLine(line string) error {
	if _, err := w.bw.WriteString(line); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := w.bw.WriteByte('\n'); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// Flush flushes buffered output.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}

// Close flushes and closes the underlying file, if any.
func (w *Writer) Close() error {
	if err := w.bw.Flush(); err != nil {
		return err
	}
	if w.file != nil {
		return w.file.Close()
	}
	return nil
}

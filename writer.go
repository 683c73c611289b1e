package strictcsv

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const (
	defaultBufferSize = 1 << 10 // 1024 bytes
	// Pre-sizing estimate for serialized output.
	bytesPerField = 10
	terminator    = "\r\n"
)

var (
	errNilWriter      = errors.New("strictcsv: writer is nil")
	errWriterNoTarget = errors.New("strictcsv: writer destination cannot be nil")
)

// Serialize converts t to CSV text. Records are separated by CRLF with no trailing
// terminator, and fields are quoted only when they contain a quote, a separator,
// CR or LF. Rows are written with their own length; Serialize does not check
// rectangularity (see Table.Validate).
//
// A final record holding a single empty field is written as "" so that the
// terminator before it is not read back as a trailing line break.
func Serialize(t Table) string {
	var sb strings.Builder
	sb.Grow(len(t) * t.Width() * bytesPerField)

	for i, row := range t {
		if i > 0 {
			sb.WriteString(terminator)
			if i == len(t)-1 && isEmptyRecord(row) {
				sb.WriteString(`""`)
				break
			}
		}
		for j, field := range row {
			if j > 0 {
				sb.WriteByte(separator)
			}
			// strings.Builder never returns an error.
			_ = writeField(&sb, field)
		}
	}
	return sb.String()
}

// Writer emits a Table as CSV through a buffered destination. When Flush is
// called once after the last row, the output is identical to Serialize for the
// same rows. A Flush that lands right after a record holding a single empty
// field writes that record as "", so the bytes can differ from Serialize while
// still parsing to the same table.
type Writer struct {
	dst *bufio.Writer

	written bool
	// The last record was a single empty field; Flush quotes it unless another record follows.
	pendingEmpty bool
	err          error
}

// NewWriter creates a new Writer with internal buffering tuned for bulk writes.
func NewWriter(w io.Writer) *Writer {
	if w == nil {
		panic(errWriterNoTarget.Error())
	}
	return &Writer{dst: bufio.NewWriterSize(w, defaultBufferSize)}
}

// Reset discards buffered state and starts a new table on dst.
func (w *Writer) Reset(dst io.Writer) {
	if w == nil {
		panic(errNilWriter.Error())
	}
	if dst == nil {
		panic(errWriterNoTarget.Error())
	}
	if w.dst == nil {
		w.dst = bufio.NewWriterSize(dst, defaultBufferSize)
	} else {
		w.dst.Reset(dst)
	}
	w.written = false
	w.pendingEmpty = false
	w.err = nil
}

// Write emits a single record, preceded by CRLF unless it is the first record.
func (w *Writer) Write(row Row) error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}

	w.pendingEmpty = false
	if w.written {
		if _, err := w.dst.WriteString(terminator); err != nil {
			w.err = err
			return err
		}
		if isEmptyRecord(row) {
			w.pendingEmpty = true
			return nil
		}
	}
	w.written = true

	for i := range row {
		if i > 0 {
			if err := w.dst.WriteByte(separator); err != nil {
				w.err = err
				return err
			}
		}
		if err := writeField(w.dst, row[i]); err != nil {
			w.err = err
			return err
		}
	}
	return nil
}

// WriteAll writes every row of t, stopping at the first error.
func (w *Writer) WriteAll(t Table) error {
	if w == nil {
		return errNilWriter
	}
	for _, row := range t {
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes pending buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}
	if w.pendingEmpty {
		w.pendingEmpty = false
		if _, err := w.dst.WriteString(`""`); err != nil {
			w.err = err
			return err
		}
	}
	if err := w.dst.Flush(); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Error reports the first error encountered by the writer.
func (w *Writer) Error() error {
	if w == nil {
		return errNilWriter
	}
	return w.err
}

type fieldWriter interface {
	io.ByteWriter
	io.StringWriter
}

func writeField(dst fieldWriter, field string) error {
	switch {
	case strings.IndexByte(field, quote) >= 0:
		if err := dst.WriteByte(quote); err != nil {
			return err
		}
		start := 0
		for i := 0; i < len(field); i++ {
			if field[i] != quote {
				continue
			}
			// Write through the quote, then write it once more.
			if _, err := dst.WriteString(field[start : i+1]); err != nil {
				return err
			}
			if err := dst.WriteByte(quote); err != nil {
				return err
			}
			start = i + 1
		}
		if _, err := dst.WriteString(field[start:]); err != nil {
			return err
		}
		return dst.WriteByte(quote)
	case fieldNeedsQuote(field):
		if err := dst.WriteByte(quote); err != nil {
			return err
		}
		if _, err := dst.WriteString(field); err != nil {
			return err
		}
		return dst.WriteByte(quote)
	default:
		_, err := dst.WriteString(field)
		return err
	}
}

func isEmptyRecord(row Row) bool {
	return len(row) == 1 && row[0] == ""
}

func fieldNeedsQuote(field string) bool {
	for i := 0; i < len(field); i++ {
		switch field[i] {
		case separator, carriageReturn, lineFeed:
			return true
		}
	}
	return false
}

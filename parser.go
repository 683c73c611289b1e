package strictcsv

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	separator      = ','
	quote          = '"'
	carriageReturn = '\r'
	lineFeed       = '\n'
)

var (
	// ErrBareQuote is returned when a quote appears inside an unquoted field.
	ErrBareQuote = errors.New("strictcsv: bare quote in non-quoted field")
	// ErrTrailingText is returned when anything but a separator or record terminator follows a closing quote.
	ErrTrailingText = errors.New("strictcsv: unexpected text after closing quote")
	// ErrUnterminatedQuote is returned when a quoted field is still open at end of input.
	ErrUnterminatedQuote = errors.New("strictcsv: unterminated quoted field")
	// ErrFieldCount is returned when a record has a different number of fields than the first one.
	ErrFieldCount = errors.New("strictcsv: wrong number of fields")
	// ErrEmptyTable is returned by Table.Validate for a table without rows or fields.
	ErrEmptyTable = errors.New("strictcsv: table has no fields")
)

// ParseError contains location information for CSV parsing errors.
type ParseError struct {
	Record int // 1-based record index
	Line   int // 1-based physical line
	Column int // 1-based, counted in runes
	Err    error
}

// Error formats the parse error message with the stored position and Err values.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	if e.Line == 0 {
		return fmt.Sprintf("strictcsv: parse error in record %d: %v", e.Record, e.Err)
	}
	return fmt.Sprintf("strictcsv: parse error in record %d (line %d, column %d): %v", e.Record, e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying Err so ParseError participates in errors.Unwrap.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsParseError reports whether err describes invalid CSV input, whatever the reason.
func IsParseError(err error) bool {
	var perr *ParseError
	return errors.As(err, &perr)
}

type parseState int

const (
	stateBeforeField      parseState = iota // at the first character of a field, or at end of input
	stateInField                            // inside an unquoted field
	stateInQuotedField                      // between the opening and closing quote
	stateAfterQuotedField                   // right after a closing quote
)

// Parse converts text into a Table. The input must be complete; records end with
// CRLF, LF or a lone CR, and every record must have the same number of fields.
// On failure Parse returns a nil Table and a *ParseError.
func Parse(text string) (Table, error) {
	var (
		table      Table
		rowStarts  []int
		row        Row
		rowStart   int
		state      = stateBeforeField
		fieldStart int
		hasEscapes bool
	)

	// endRow appends the current row and prepares the next one. i is the index of the
	// terminator; a CR followed by LF consumes both and the new index is returned.
	endRow := func(i int) int {
		if text[i] == carriageReturn && i+1 < len(text) && text[i+1] == lineFeed {
			i++
		}
		table = append(table, row)
		rowStarts = append(rowStarts, rowStart)
		row = make(Row, 0, len(row))
		rowStart = i + 1
		return i
	}

	for i := 0; i < len(text); i++ {
		c := text[i]

		switch state {
		case stateInField:
			switch c {
			case separator:
				row = append(row, text[fieldStart:i])
				state = stateBeforeField
			case carriageReturn, lineFeed:
				row = append(row, text[fieldStart:i])
				i = endRow(i)
				state = stateBeforeField
			case quote:
				return nil, newParseError(text, len(table)+1, i, ErrBareQuote)
			}

		case stateInQuotedField:
			if c != quote {
				continue
			}
			if i+1 < len(text) && text[i+1] == quote {
				i++
				hasEscapes = true
				continue
			}
			field := text[fieldStart:i]
			if hasEscapes {
				field = strings.ReplaceAll(field, `""`, `"`)
				hasEscapes = false
			}
			row = append(row, field)
			state = stateAfterQuotedField

		case stateBeforeField:
			switch c {
			case separator:
				row = append(row, "")
			case carriageReturn, lineFeed:
				row = append(row, "")
				i = endRow(i)
			case quote:
				fieldStart = i + 1
				state = stateInQuotedField
			default:
				fieldStart = i
				state = stateInField
			}

		case stateAfterQuotedField:
			switch c {
			case separator:
				state = stateBeforeField
			case carriageReturn, lineFeed:
				i = endRow(i)
				state = stateBeforeField
			default:
				return nil, newParseError(text, len(table)+1, i, ErrTrailingText)
			}
		}
	}

	if state == stateInQuotedField {
		return nil, newParseError(text, len(table)+1, fieldStart-1, ErrUnterminatedQuote)
	}

	// An empty input is a single empty field, and a trailing separator opens one more.
	if len(text) == 0 || text[len(text)-1] == separator {
		row = append(row, "")
	} else if state == stateInField {
		row = append(row, text[fieldStart:])
	}
	if len(row) > 0 {
		table = append(table, row)
		rowStarts = append(rowStarts, rowStart)
	}

	width := len(table[0])
	for i := 1; i < len(table); i++ {
		if len(table[i]) != width {
			return nil, newParseError(text, i+1, rowStarts[i], ErrFieldCount)
		}
	}
	return table, nil
}

// newParseError builds a *ParseError for the character at byte offset in text.
func newParseError(text string, record, offset int, err error) error {
	line, column := locate(text, offset)
	return &ParseError{Record: record, Line: line, Column: column, Err: err}
}

// locate converts a byte offset into a 1-based line and rune column. Line breaks
// are counted the same way the parser counts record terminators, including those
// embedded in quoted fields.
func locate(text string, offset int) (line, column int) {
	if offset > len(text) {
		offset = len(text)
	}
	line = 1
	lineStart := 0
	for i := 0; i < offset; i++ {
		switch text[i] {
		case lineFeed:
			line++
			lineStart = i + 1
		case carriageReturn:
			if i+1 < offset && text[i+1] == lineFeed {
				i++
			}
			line++
			lineStart = i + 1
		}
	}
	return line, utf8.RuneCountInString(text[lineStart:offset]) + 1
}

// Reader parses CSV from an io.Reader. The whole source is read into memory on the
// first call to Read or ReadAll; parsing is never incremental.
type Reader struct {
	src io.Reader

	table  Table
	next   int
	err    error
	loaded bool
}

// NewReader creates a Reader that consumes CSV data from r, panicking if r is nil.
func NewReader(r io.Reader) *Reader {
	if r == nil {
		panic("strictcsv: reader source cannot be nil")
	}
	return &Reader{src: r}
}

// Read returns the next record of the parsed input, or io.EOF when no records remain.
// A parse failure is returned by the first call and every call after it.
func (r *Reader) Read() (Row, error) {
	if r == nil || r.src == nil {
		return nil, io.EOF
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	if r.next >= len(r.table) {
		return nil, io.EOF
	}
	row := r.table[r.next]
	r.next++
	return row, nil
}

// ReadAll returns every record not yet returned by Read.
func (r *Reader) ReadAll() (Table, error) {
	if r == nil || r.src == nil {
		return nil, nil
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	rest := r.table[r.next:]
	r.next = len(r.table)
	return rest, nil
}

func (r *Reader) load() error {
	if r.loaded {
		return r.err
	}
	r.loaded = true

	var sb strings.Builder
	if _, err := io.Copy(&sb, r.src); err != nil {
		r.err = fmt.Errorf("strictcsv: reading source: %w", err)
		return r.err
	}
	r.table, r.err = Parse(sb.String())
	return r.err
}

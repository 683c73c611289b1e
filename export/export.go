// Package export converts strictcsv tables into other tabular formats: Apache
// Arrow tables, Parquet files, JSON and YAML documents. Every column is exported
// as a string; no type inference is attempted.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/oleg578/strictcsv"
)

// ErrDuplicateColumn is returned when a header row names the same column twice.
var ErrDuplicateColumn = errors.New("export: duplicate column name")

// Options controls how a table is mapped onto named columns.
type Options struct {
	// Header treats the first row as column names instead of data.
	Header bool
	// Allocator is used for Arrow buffers. Defaults to memory.DefaultAllocator.
	Allocator memory.Allocator
}

func (o Options) allocator() memory.Allocator {
	if o.Allocator == nil {
		return memory.DefaultAllocator
	}
	return o.Allocator
}

// columns returns the column names and the data rows of t.
func (o Options) columns(t strictcsv.Table) ([]string, strictcsv.Table, error) {
	if err := t.Validate(); err != nil {
		return nil, nil, fmt.Errorf("export: invalid table: %w", err)
	}
	if o.Header {
		if err := checkUnique(t[0]); err != nil {
			return nil, nil, err
		}
		return t[0], t[1:], nil
	}
	names := make([]string, t.Width())
	for i := range names {
		names[i] = "c" + strconv.Itoa(i+1)
	}
	return names, t, nil
}

// Arrow builds an Arrow table with one string column per CSV column. The caller
// must Release the result.
func Arrow(t strictcsv.Table, opts Options) (arrow.Table, error) {
	names, rows, err := opts.columns(t)
	if err != nil {
		return nil, err
	}
	mem := opts.allocator()

	fields := make([]arrow.Field, len(names))
	for i, name := range names {
		fields[i] = arrow.Field{Name: name, Type: arrow.BinaryTypes.String}
	}
	schema := arrow.NewSchema(fields, nil)

	cols := make([]arrow.Array, len(names))
	defer func() {
		for _, col := range cols {
			if col != nil {
				col.Release()
			}
		}
	}()

	for j := range names {
		b := array.NewStringBuilder(mem)
		b.Reserve(len(rows))
		for _, row := range rows {
			b.Append(row[j])
		}
		cols[j] = b.NewArray()
		b.Release()
	}

	rec := array.NewRecord(schema, cols, int64(len(rows)))
	defer rec.Release()
	return array.NewTableFromRecords(schema, []arrow.Record{rec}), nil
}

// WriteParquet writes t to w as a Snappy-compressed Parquet file. w is not
// closed, even when it implements io.Closer.
func WriteParquet(w io.Writer, t strictcsv.Table, opts Options) error {
	tbl, err := Arrow(t, opts)
	if err != nil {
		return err
	}
	defer tbl.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithAllocator(opts.allocator()),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	// The parquet writer closes its sink if it can.
	sink := struct{ io.Writer }{w}
	fw, err := pqarrow.NewFileWriter(tbl.Schema(), sink, props, arrowProps)
	if err != nil {
		return fmt.Errorf("export: creating parquet writer: %w", err)
	}
	if err := fw.WriteTable(tbl, max(tbl.NumRows(), 1)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("export: writing parquet table: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("export: closing parquet writer: %w", err)
	}
	return nil
}

// WriteJSON writes t to w as a JSON array. With Options.Header each record is an
// object keyed by column name, with keys in header order; otherwise each record
// is an array of strings.
func WriteJSON(w io.Writer, t strictcsv.Table, opts Options) error {
	doc, err := document(t, opts)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("export: encoding json: %w", err)
	}
	return nil
}

// WriteYAML writes t to w as a YAML sequence, with the same shapes as WriteJSON.
// Mappings keep the column order of the header row.
func WriteYAML(w io.Writer, t strictcsv.Table, opts Options) error {
	names, rows, err := opts.columns(t)
	if err != nil {
		return err
	}

	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range rows {
		item := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		if opts.Header {
			item = &yaml.Node{Kind: yaml.MappingNode}
		}
		for j, field := range row {
			if opts.Header {
				item.Content = append(item.Content, stringNode(names[j]))
			}
			item.Content = append(item.Content, stringNode(field))
		}
		seq.Content = append(seq.Content, item)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{seq}}); err != nil {
		return fmt.Errorf("export: encoding yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("export: encoding yaml: %w", err)
	}
	return nil
}

// stringNode always tags the value as a string, so fields like "true" or "1997"
// are not re-typed by YAML readers.
func stringNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func document(t strictcsv.Table, opts Options) (any, error) {
	names, rows, err := opts.columns(t)
	if err != nil {
		return nil, err
	}
	if !opts.Header {
		out := make([][]string, len(rows))
		for i, row := range rows {
			out[i] = row
		}
		return out, nil
	}
	out := make([]record, len(rows))
	for i, row := range rows {
		out[i] = record{names: names, values: row}
	}
	return out, nil
}

// record is a JSON object whose keys keep the column order of the header row.
type record struct {
	names  []string
	values []string
}

func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func checkUnique(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

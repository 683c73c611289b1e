// # StrictCSV: RFC 4180 Parsing and Serialization for Go
//
// StrictCSV converts complete CSV documents into rectangular tables and back. It
// follows RFC 4180 with one relaxation: records may end with LF or a lone CR as
// well as CRLF.
//
// # Features
//
// - Single-pass parser over an in-memory string; fields are substrings of the input.
// - Strict validation: bare quotes, text after a closing quote, unterminated quotes
//   and rows of differing width are rejected with a `*ParseError`.
// - Canonical serializer: minimal quoting, CRLF between records, no trailing terminator.
// - `Parse(Serialize(t))` reproduces `t`, and canonical input round-trips byte for byte.
// - `Reader`/`Writer` adapters for `io.Reader` and `io.Writer` callers.
//
// # Getting Started
//
//	table, err := strictcsv.Parse("Year,Make\r\n1997,Ford")
//	if err != nil {
//		var perr *strictcsv.ParseError
//		if errors.As(err, &perr) {
//			log.Fatalf("line %d column %d: %v", perr.Line, perr.Column, perr.Err)
//		}
//	}
//	fmt.Print(strictcsv.Serialize(table))
//
// The export subpackage converts tables to Arrow, Parquet, JSON and YAML, and
// cmd/strictcsv wraps everything in a command-line tool.
package strictcsv

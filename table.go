package strictcsv

// Row is one record: an ordered list of fields.
type Row []string

// Table is an ordered list of records. Tables returned by Parse always hold at
// least one row, and every row has the same number of fields.
type Table []Row

// Width returns the field count of the first row, or 0 for an empty table.
func (t Table) Width() int {
	if len(t) == 0 {
		return 0
	}
	return len(t[0])
}

// Validate checks the invariants Parse guarantees: at least one row, at least one
// field, and the same field count in every row.
func (t Table) Validate() error {
	if t.Width() == 0 {
		return &ParseError{Record: 1, Err: ErrEmptyTable}
	}
	width := len(t[0])
	for i := 1; i < len(t); i++ {
		if len(t[i]) != width {
			return &ParseError{Record: i + 1, Err: ErrFieldCount}
		}
	}
	return nil
}

// Equal reports whether t and other hold the same fields in the same shape.
func (t Table) Equal(other Table) bool {
	if len(t) != len(other) {
		return false
	}
	for i := range t {
		if len(t[i]) != len(other[i]) {
			return false
		}
		for j := range t[i] {
			if t[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// Clone returns a copy of t that shares no row slices with it.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for i, row := range t {
		out[i] = append(make(Row, 0, len(row)), row...)
	}
	return out
}

// String serializes the table as CSV text.
func (t Table) String() string {
	return Serialize(t)
}

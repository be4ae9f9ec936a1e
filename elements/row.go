package elements

// Row is a single record row keyed by column name. Values carry the Go
// representations the arrow readers produce: bool, int64, float64,
// string and []byte.
type Row map[string]any

// ColumnMapping maps source column names to the names a computation
// reads them by.
type ColumnMapping map[string]string

// Project returns a new row holding only the mapped columns, keyed by
// their mapped names. Source columns absent from the row are skipped;
// the caller validates presence against the record schema up front.
func (obj Row) Project(mapping ColumnMapping) Row {
	projected := make(Row, len(mapping))
	for source, alias := range mapping {
		if value, ok := obj[source]; ok {
			projected[alias] = value
		}
	}
	return projected
}

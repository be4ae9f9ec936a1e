package arrowops

import (
	"slices"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
)

// RecordsEqual compares two records column by column. With no fields
// given every column is compared, including the schemas; otherwise only
// the named fields are compared.
func RecordsEqual(rec1, rec2 arrow.Record, fields ...string) bool {
	if len(fields) == 0 {
		return array.RecordEqual(rec1, rec2)
	}

	if rec1.NumRows() != rec2.NumRows() {
		return false
	}
	for i := 0; i < int(rec1.NumCols()); i++ {
		columnName := rec1.ColumnName(i)
		if !slices.Contains(fields, columnName) {
			continue
		}
		colIndices := rec2.Schema().FieldIndices(columnName)
		if len(colIndices) == 0 {
			return false
		}
		if !array.Equal(rec1.Column(i), rec2.Column(colIndices[0])) {
			return false
		}
	}
	return true
}

package arrowops

import (
	"fmt"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// ConcatenateRecords stacks records with equal schemas into one record,
// preserving their order.
func ConcatenateRecords(mem *memory.GoAllocator, records ...arrow.Record) (arrow.Record, error) {
	for _, record := range records {
		record.Retain()
	}
	defer func() {
		for _, record := range records {
			record.Release()
		}
	}()

	if len(records) == 0 {
		return nil, errs.NewStackError(ErrNoRecords)
	}
	if len(records) == 1 {
		records[0].Retain()
		return records[0], nil
	}

	schema := records[0].Schema()
	var numRows int64
	for _, record := range records {
		if !schema.Equal(record.Schema()) {
			return nil, errs.NewStackError(ErrSchemasNotEqual)
		}
		numRows += record.NumRows()
	}

	concatenatedColumns := make([]arrow.Array, schema.NumFields())
	columnChunks := make([]arrow.Array, len(records))
	for fieldIdx := 0; fieldIdx < schema.NumFields(); fieldIdx++ {
		for recordIdx, record := range records {
			columnChunks[recordIdx] = record.Column(fieldIdx)
		}
		concatenatedColumn, err := array.Concatenate(columnChunks, mem)
		if err != nil {
			return nil, errs.Wrap(err, fmt.Errorf("column name: %s", schema.Field(fieldIdx).Name))
		}
		concatenatedColumns[fieldIdx] = concatenatedColumn
	}

	return array.NewRecord(schema, concatenatedColumns, numRows), nil
}

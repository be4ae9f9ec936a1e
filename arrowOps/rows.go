package arrowops

import (
	"fmt"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
)

// RecordRow extracts the row at idx as a column name to value map.
// Integer columns of any width come back as int64 and null cells as
// nil so callers only handle the canonical Go types.
func RecordRow(record arrow.Record, idx int) (map[string]any, error) {
	if idx < 0 || int64(idx) >= record.NumRows() {
		return nil, errs.NewStackError(fmt.Errorf(
			"%w| row index %d with record of %d rows", ErrIndexOutOfBounds, idx, record.NumRows(),
		))
	}

	row := make(map[string]any, record.NumCols())
	for colIdx := 0; colIdx < int(record.NumCols()); colIdx++ {
		value, err := ArrayValue(record.Column(colIdx), idx)
		if err != nil {
			return nil, errs.Wrap(err, fmt.Errorf("column name: %s", record.ColumnName(colIdx)))
		}
		row[record.ColumnName(colIdx)] = value
	}
	return row, nil
}

// ArrayValue returns the Go value at idx. Nulls come back as nil.
func ArrayValue(arr arrow.Array, idx int) (any, error) {
	if arr.IsNull(idx) {
		return nil, nil
	}
	switch arr.DataType().ID() {
	case arrow.BOOL:
		return arr.(*array.Boolean).Value(idx), nil
	case arrow.INT8:
		return int64(arr.(*array.Int8).Value(idx)), nil
	case arrow.INT16:
		return int64(arr.(*array.Int16).Value(idx)), nil
	case arrow.INT32:
		return int64(arr.(*array.Int32).Value(idx)), nil
	case arrow.INT64:
		return arr.(*array.Int64).Value(idx), nil
	case arrow.UINT8:
		return int64(arr.(*array.Uint8).Value(idx)), nil
	case arrow.UINT16:
		return int64(arr.(*array.Uint16).Value(idx)), nil
	case arrow.UINT32:
		return int64(arr.(*array.Uint32).Value(idx)), nil
	case arrow.UINT64:
		return int64(arr.(*array.Uint64).Value(idx)), nil
	case arrow.FLOAT32:
		return float64(arr.(*array.Float32).Value(idx)), nil
	case arrow.FLOAT64:
		return arr.(*array.Float64).Value(idx), nil
	case arrow.STRING:
		return arr.(*array.String).Value(idx), nil
	case arrow.BINARY:
		return arr.(*array.Binary).Value(idx), nil
	case arrow.DATE32:
		return int64(arr.(*array.Date32).Value(idx)), nil
	case arrow.DATE64:
		return int64(arr.(*array.Date64).Value(idx)), nil
	case arrow.TIMESTAMP:
		return int64(arr.(*array.Timestamp).Value(idx)), nil
	default:
		return nil, fmt.Errorf("%w| value for type %s", ErrUnsupportedDataType, arr.DataType().Name())
	}
}

// AppendRecordRow appends one row onto the record builder, matching
// map keys against the builder schema. Every field of the schema must
// be present in the row; a nil value appends a null.
func AppendRecordRow(recordBuilder *array.RecordBuilder, row map[string]any) error {
	schema := recordBuilder.Schema()
	for idx, field := range schema.Fields() {
		value, ok := row[field.Name]
		if !ok {
			return errs.NewStackError(fmt.Errorf("%w| column name: %s", ErrColumnNotFound, field.Name))
		}
		if err := AppendRowValue(recordBuilder.Field(idx), value); err != nil {
			return errs.Wrap(err, fmt.Errorf("column name: %s", field.Name))
		}
	}
	return nil
}

// AppendRowValue appends a single Go value onto the array builder. The
// value must be the canonical Go type for the builder; integer widths
// below 64 bits also accept an int64.
func AppendRowValue(bldr array.Builder, value any) error {
	if value == nil {
		bldr.AppendNull()
		return nil
	}

	switch typedBldr := bldr.(type) {
	case *array.BooleanBuilder:
		if v, ok := value.(bool); ok {
			typedBldr.Append(v)
			return nil
		}
	case *array.Int8Builder:
		switch v := value.(type) {
		case int8:
			typedBldr.Append(v)
			return nil
		case int64:
			typedBldr.Append(int8(v))
			return nil
		}
	case *array.Int16Builder:
		switch v := value.(type) {
		case int16:
			typedBldr.Append(v)
			return nil
		case int64:
			typedBldr.Append(int16(v))
			return nil
		}
	case *array.Int32Builder:
		switch v := value.(type) {
		case int32:
			typedBldr.Append(v)
			return nil
		case int64:
			typedBldr.Append(int32(v))
			return nil
		}
	case *array.Int64Builder:
		if v, ok := value.(int64); ok {
			typedBldr.Append(v)
			return nil
		}
	case *array.Uint8Builder:
		switch v := value.(type) {
		case uint8:
			typedBldr.Append(v)
			return nil
		case int64:
			typedBldr.Append(uint8(v))
			return nil
		}
	case *array.Uint16Builder:
		switch v := value.(type) {
		case uint16:
			typedBldr.Append(v)
			return nil
		case int64:
			typedBldr.Append(uint16(v))
			return nil
		}
	case *array.Uint32Builder:
		switch v := value.(type) {
		case uint32:
			typedBldr.Append(v)
			return nil
		case int64:
			typedBldr.Append(uint32(v))
			return nil
		}
	case *array.Uint64Builder:
		switch v := value.(type) {
		case uint64:
			typedBldr.Append(v)
			return nil
		case int64:
			typedBldr.Append(uint64(v))
			return nil
		}
	case *array.Float32Builder:
		switch v := value.(type) {
		case float32:
			typedBldr.Append(v)
			return nil
		case float64:
			typedBldr.Append(float32(v))
			return nil
		}
	case *array.Float64Builder:
		if v, ok := value.(float64); ok {
			typedBldr.Append(v)
			return nil
		}
	case *array.StringBuilder:
		if v, ok := value.(string); ok {
			typedBldr.Append(v)
			return nil
		}
	case *array.BinaryBuilder:
		if v, ok := value.([]byte); ok {
			typedBldr.Append(v)
			return nil
		}
	case *array.Date32Builder:
		switch v := value.(type) {
		case arrow.Date32:
			typedBldr.Append(v)
			return nil
		case int64:
			typedBldr.Append(arrow.Date32(v))
			return nil
		}
	case *array.Date64Builder:
		switch v := value.(type) {
		case arrow.Date64:
			typedBldr.Append(v)
			return nil
		case int64:
			typedBldr.Append(arrow.Date64(v))
			return nil
		}
	case *array.TimestampBuilder:
		switch v := value.(type) {
		case arrow.Timestamp:
			typedBldr.Append(v)
			return nil
		case int64:
			typedBldr.Append(arrow.Timestamp(v))
			return nil
		}
	default:
		return fmt.Errorf("%w| append for type %s", ErrUnsupportedDataType, bldr.Type().Name())
	}

	return fmt.Errorf(
		"%w| value of type %T for %s builder", ErrUnexpectedValueType, value, bldr.Type().Name(),
	)
}

package arrowops

import (
	"fmt"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// TakeRecord builds a new record holding the rows of the input record
// at the given indices, in the given order. Indices may repeat.
func TakeRecord(mem *memory.GoAllocator, record arrow.Record, indices *array.Uint32) (arrow.Record, error) {
	record.Retain()
	defer record.Release()

	for i := 0; i < indices.Len(); i++ {
		if int64(indices.Value(i)) >= record.NumRows() {
			return nil, errs.NewStackError(fmt.Errorf(
				"%w| take index %d with record of %d rows", ErrIndexOutOfBounds, indices.Value(i), record.NumRows(),
			))
		}
	}

	takenColumns := make([]arrow.Array, record.NumCols())
	for colIdx := 0; colIdx < int(record.NumCols()); colIdx++ {
		takenColumn, err := TakeArray(mem, record.Column(colIdx), indices)
		if err != nil {
			return nil, errs.Wrap(err, fmt.Errorf("column name: %s", record.ColumnName(colIdx)))
		}
		takenColumns[colIdx] = takenColumn
	}
	return array.NewRecord(record.Schema(), takenColumns, int64(indices.Len())), nil
}

func TakeArray(mem *memory.GoAllocator, arr arrow.Array, indices *array.Uint32) (arrow.Array, error) {
	switch arr.DataType().ID() {
	case arrow.BOOL:
		bldr := array.NewBooleanBuilder(mem)
		defer bldr.Release()
		takeValues[bool](bldr, arr.(*array.Boolean), indices)
		return bldr.NewArray(), nil
	case arrow.INT8:
		bldr := array.NewInt8Builder(mem)
		defer bldr.Release()
		takeValues[int8](bldr, arr.(*array.Int8), indices)
		return bldr.NewArray(), nil
	case arrow.INT16:
		bldr := array.NewInt16Builder(mem)
		defer bldr.Release()
		takeValues[int16](bldr, arr.(*array.Int16), indices)
		return bldr.NewArray(), nil
	case arrow.INT32:
		bldr := array.NewInt32Builder(mem)
		defer bldr.Release()
		takeValues[int32](bldr, arr.(*array.Int32), indices)
		return bldr.NewArray(), nil
	case arrow.INT64:
		bldr := array.NewInt64Builder(mem)
		defer bldr.Release()
		takeValues[int64](bldr, arr.(*array.Int64), indices)
		return bldr.NewArray(), nil
	case arrow.UINT8:
		bldr := array.NewUint8Builder(mem)
		defer bldr.Release()
		takeValues[uint8](bldr, arr.(*array.Uint8), indices)
		return bldr.NewArray(), nil
	case arrow.UINT16:
		bldr := array.NewUint16Builder(mem)
		defer bldr.Release()
		takeValues[uint16](bldr, arr.(*array.Uint16), indices)
		return bldr.NewArray(), nil
	case arrow.UINT32:
		bldr := array.NewUint32Builder(mem)
		defer bldr.Release()
		takeValues[uint32](bldr, arr.(*array.Uint32), indices)
		return bldr.NewArray(), nil
	case arrow.UINT64:
		bldr := array.NewUint64Builder(mem)
		defer bldr.Release()
		takeValues[uint64](bldr, arr.(*array.Uint64), indices)
		return bldr.NewArray(), nil
	case arrow.FLOAT32:
		bldr := array.NewFloat32Builder(mem)
		defer bldr.Release()
		takeValues[float32](bldr, arr.(*array.Float32), indices)
		return bldr.NewArray(), nil
	case arrow.FLOAT64:
		bldr := array.NewFloat64Builder(mem)
		defer bldr.Release()
		takeValues[float64](bldr, arr.(*array.Float64), indices)
		return bldr.NewArray(), nil
	case arrow.STRING:
		bldr := array.NewStringBuilder(mem)
		defer bldr.Release()
		takeValues[string](bldr, arr.(*array.String), indices)
		return bldr.NewArray(), nil
	case arrow.BINARY:
		bldr := array.NewBinaryBuilder(mem, arrow.BinaryTypes.Binary)
		defer bldr.Release()
		takeValues[[]byte](bldr, arr.(*array.Binary), indices)
		return bldr.NewArray(), nil
	case arrow.DATE32:
		bldr := array.NewDate32Builder(mem)
		defer bldr.Release()
		takeValues[arrow.Date32](bldr, arr.(*array.Date32), indices)
		return bldr.NewArray(), nil
	case arrow.DATE64:
		bldr := array.NewDate64Builder(mem)
		defer bldr.Release()
		takeValues[arrow.Date64](bldr, arr.(*array.Date64), indices)
		return bldr.NewArray(), nil
	case arrow.TIMESTAMP:
		bldr := array.NewTimestampBuilder(mem, arr.DataType().(*arrow.TimestampType))
		defer bldr.Release()
		takeValues[arrow.Timestamp](bldr, arr.(*array.Timestamp), indices)
		return bldr.NewArray(), nil
	default:
		return nil, fmt.Errorf("%w| take for type %s", ErrUnsupportedDataType, arr.DataType().Name())
	}
}

func takeValues[T any](bldr valueBuilder[T], arr valueArray[T], indices *array.Uint32) {
	bldr.Reserve(indices.Len())
	for i := 0; i < indices.Len(); i++ {
		rowIdx := int(indices.Value(i))
		if arr.IsNull(rowIdx) {
			bldr.AppendNull()
		} else {
			bldr.Append(arr.Value(rowIdx))
		}
	}
}

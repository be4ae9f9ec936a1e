package transform

import (
	"fmt"
	"log/slog"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	arrowops "github.com/fedmol/descry/arrowOps"
	"github.com/fedmol/descry/elements"
)

const (
	DefaultSuccessColumn = "success"
	DefaultErrorColumn   = "error_message"
)

type PartitionerOptions struct {
	SuccessColumn string
	ErrorColumn   string
}

// Partitioner splits one processed record into a succeeded record and
// a failed record. The succeeded record carries the original columns,
// the computed columns and the success flag; the failed record carries
// the original columns, the success flag and the error message. Input
// order is kept inside each side.
type Partitioner struct {
	logger        *slog.Logger
	mem           *memory.GoAllocator
	outputColumns []elements.Column
	successColumn string
	errorColumn   string
}

func NewPartitioner(
	logger *slog.Logger,
	mem *memory.GoAllocator,
	outputColumns []elements.Column,
	options PartitionerOptions,
) *Partitioner {
	successColumn := options.SuccessColumn
	if successColumn == "" {
		successColumn = DefaultSuccessColumn
	}
	errorColumn := options.ErrorColumn
	if errorColumn == "" {
		errorColumn = DefaultErrorColumn
	}
	return &Partitioner{
		logger:        logger,
		mem:           mem,
		outputColumns: outputColumns,
		successColumn: successColumn,
		errorColumn:   errorColumn,
	}
}

func (obj *Partitioner) SuccessColumn() string {
	return obj.successColumn
}

func (obj *Partitioner) ErrorColumn() string {
	return obj.errorColumn
}

func (obj *Partitioner) Partition(original arrow.Record, outcomes []elements.Outcome) (arrow.Record, arrow.Record, error) {
	original.Retain()
	defer original.Release()

	if int64(len(outcomes)) != original.NumRows() {
		return nil, nil, errs.NewStackError(fmt.Errorf(
			"%w| record has %d rows but received %d outcomes",
			elements.ErrOutcomeCountMismatch, original.NumRows(), len(outcomes),
		))
	}

	// 1. split the row indices by outcome
	successIdxBldr := array.NewUint32Builder(obj.mem)
	defer successIdxBldr.Release()
	failureIdxBldr := array.NewUint32Builder(obj.mem)
	defer failureIdxBldr.Release()
	for rowIdx, outcome := range outcomes {
		if outcome.Success {
			successIdxBldr.Append(uint32(rowIdx))
		} else {
			failureIdxBldr.Append(uint32(rowIdx))
		}
	}
	successIndices := successIdxBldr.NewUint32Array()
	defer successIndices.Release()
	failureIndices := failureIdxBldr.NewUint32Array()
	defer failureIndices.Release()

	// 2. carry the original columns over to each side
	successOriginal, err := arrowops.TakeRecord(obj.mem, original, successIndices)
	if err != nil {
		return nil, nil, errs.Wrap(err, fmt.Errorf("taking succeeded rows"))
	}
	defer successOriginal.Release()
	failureOriginal, err := arrowops.TakeRecord(obj.mem, original, failureIndices)
	if err != nil {
		return nil, nil, errs.Wrap(err, fmt.Errorf("taking failed rows"))
	}
	defer failureOriginal.Release()

	// 3. extend each side with its outcome columns
	successRecord, err := obj.buildSuccessRecord(successOriginal, successIndices, outcomes)
	if err != nil {
		return nil, nil, err
	}
	failureRecord, err := obj.buildFailureRecord(failureOriginal, failureIndices, outcomes)
	if err != nil {
		return nil, nil, err
	}

	return successRecord, failureRecord, nil
}

func (obj *Partitioner) buildSuccessRecord(
	originalPart arrow.Record, indices *array.Uint32, outcomes []elements.Outcome,
) (arrow.Record, error) {
	outputBldrs := make([]array.Builder, len(obj.outputColumns))
	for colIdx, col := range obj.outputColumns {
		outputBldrs[colIdx] = array.NewBuilder(obj.mem, col.Dtype)
		defer outputBldrs[colIdx].Release()
	}
	flagBldr := array.NewBooleanBuilder(obj.mem)
	defer flagBldr.Release()

	for i := 0; i < indices.Len(); i++ {
		outcome := outcomes[indices.Value(i)]
		for colIdx, col := range obj.outputColumns {
			value, ok := outcome.Values[col.Name]
			if !ok {
				return nil, errs.NewStackError(fmt.Errorf(
					"%w| column %s missing from outcome of row %d",
					elements.ErrOutputFieldMissing, col.Name, indices.Value(i),
				))
			}
			if err := arrowops.AppendRowValue(outputBldrs[colIdx], value); err != nil {
				return nil, errs.NewStackError(fmt.Errorf(
					"%w| column %s of row %d: %v",
					elements.ErrOutputFieldType, col.Name, indices.Value(i), err,
				))
			}
		}
		flagBldr.Append(true)
	}

	fields := make([]arrow.Field, 0, int(originalPart.NumCols())+len(obj.outputColumns)+1)
	columns := make([]arrow.Array, 0, cap(fields))
	fields = append(fields, originalPart.Schema().Fields()...)
	columns = append(columns, originalPart.Columns()...)
	for colIdx, col := range obj.outputColumns {
		fields = append(fields, arrow.Field{Name: col.Name, Type: col.Dtype})
		columns = append(columns, outputBldrs[colIdx].NewArray())
	}
	fields = append(fields, arrow.Field{Name: obj.successColumn, Type: arrow.FixedWidthTypes.Boolean})
	columns = append(columns, flagBldr.NewArray())

	return array.NewRecord(arrow.NewSchema(fields, nil), columns, originalPart.NumRows()), nil
}

func (obj *Partitioner) buildFailureRecord(
	originalPart arrow.Record, indices *array.Uint32, outcomes []elements.Outcome,
) (arrow.Record, error) {
	flagBldr := array.NewBooleanBuilder(obj.mem)
	defer flagBldr.Release()
	messageBldr := array.NewStringBuilder(obj.mem)
	defer messageBldr.Release()

	for i := 0; i < indices.Len(); i++ {
		outcome := outcomes[indices.Value(i)]
		flagBldr.Append(false)
		messageBldr.Append(outcome.ErrorMessage)
	}

	fields := make([]arrow.Field, 0, int(originalPart.NumCols())+2)
	columns := make([]arrow.Array, 0, cap(fields))
	fields = append(fields, originalPart.Schema().Fields()...)
	columns = append(columns, originalPart.Columns()...)
	fields = append(fields, arrow.Field{Name: obj.successColumn, Type: arrow.FixedWidthTypes.Boolean})
	columns = append(columns, flagBldr.NewArray())
	fields = append(fields, arrow.Field{Name: obj.errorColumn, Type: arrow.BinaryTypes.String})
	columns = append(columns, messageBldr.NewArray())

	return array.NewRecord(arrow.NewSchema(fields, nil), columns, originalPart.NumRows()), nil
}

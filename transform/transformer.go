package transform

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"

	arrowops "github.com/fedmol/descry/arrowOps"
	"github.com/fedmol/descry/elements"
)

type TransformerOptions struct {
	WorkerCount   int
	SuccessColumn string
	ErrorColumn   string
}

// Transformer runs one computation over a record and splits the result
// into a succeeded record and a failed record. Every input row lands in
// exactly one of the two, at the same relative position it came in.
type Transformer struct {
	logger      *slog.Logger
	mem         *memory.GoAllocator
	computation elements.IComputation
	pool        *Pool
	partitioner *Partitioner
}

func NewTransformer(
	logger *slog.Logger,
	mem *memory.GoAllocator,
	computation elements.IComputation,
	options TransformerOptions,
) (*Transformer, error) {
	if computation == nil {
		return nil, errs.NewStackError(fmt.Errorf("%w| computation is nil", elements.ErrNilComputation))
	}
	if err := computation.IsValid(); err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("computation name: %s", computation.Name()))
	}

	pool, err := NewPool(logger, PoolOptions{WorkerCount: options.WorkerCount})
	if err != nil {
		return nil, err
	}
	partitioner := NewPartitioner(logger, mem, computation.OutputColumns(), PartitionerOptions{
		SuccessColumn: options.SuccessColumn,
		ErrorColumn:   options.ErrorColumn,
	})

	// the outcome metadata columns are reserved for the partitioner
	for _, col := range computation.OutputColumns() {
		if col.Name == partitioner.SuccessColumn() || col.Name == partitioner.ErrorColumn() {
			return nil, errs.NewStackError(fmt.Errorf(
				"%w| output column %s collides with an outcome metadata column",
				elements.ErrReservedColumn, col.Name,
			))
		}
	}

	return &Transformer{
		logger:      logger,
		mem:         mem,
		computation: computation,
		pool:        pool,
		partitioner: partitioner,
	}, nil
}

// Process transforms a single record. The returned records are the
// succeeded rows and the failed rows; their row counts always add up
// to the input row count.
func (obj *Transformer) Process(ctx context.Context, record arrow.Record) (arrow.Record, arrow.Record, error) {
	record.Retain()
	defer record.Release()

	// 1. validate the record schema before any row work runs
	if err := obj.validateSchema(record.Schema()); err != nil {
		return nil, nil, err
	}

	// 2. project the mapped input columns into rows
	rows, err := obj.buildRows(record)
	if err != nil {
		return nil, nil, err
	}

	// 3. compute every row on the pool
	outcomes, err := obj.pool.Map(ctx, rows, obj.computation.ComputeRow)
	if err != nil {
		return nil, nil, err
	}

	// 4. split the original record by outcome
	successRecord, failureRecord, err := obj.partitioner.Partition(record, outcomes)
	if err != nil {
		return nil, nil, err
	}

	obj.logger.Info("processed record",
		slog.String("computation", obj.computation.Name()),
		slog.Int64("rows", record.NumRows()),
		slog.Int64("succeeded", successRecord.NumRows()),
		slog.Int64("failed", failureRecord.NumRows()),
	)
	return successRecord, failureRecord, nil
}

func (obj *Transformer) validateSchema(schema *arrow.Schema) error {
	var missingColumns []string
	for source := range obj.computation.InputColumns() {
		if len(schema.FieldIndices(source)) == 0 {
			missingColumns = append(missingColumns, source)
		}
	}
	if len(missingColumns) > 0 {
		slices.Sort(missingColumns)
		return errs.NewStackError(fmt.Errorf(
			"%w| columns: %s", elements.ErrMissingInputColumn, strings.Join(missingColumns, ", "),
		))
	}

	reservedColumns := make([]string, 0, len(obj.computation.OutputColumns())+2)
	for _, col := range obj.computation.OutputColumns() {
		reservedColumns = append(reservedColumns, col.Name)
	}
	reservedColumns = append(reservedColumns, obj.partitioner.SuccessColumn(), obj.partitioner.ErrorColumn())

	var collidingColumns []string
	for _, name := range reservedColumns {
		if len(schema.FieldIndices(name)) > 0 {
			collidingColumns = append(collidingColumns, name)
		}
	}
	if len(collidingColumns) > 0 {
		slices.Sort(collidingColumns)
		return errs.NewStackError(fmt.Errorf(
			"%w| columns: %s", elements.ErrReservedColumn, strings.Join(collidingColumns, ", "),
		))
	}

	return nil
}

func (obj *Transformer) buildRows(record arrow.Record) ([]elements.Row, error) {
	mapping := obj.computation.InputColumns()

	rows := make([]elements.Row, record.NumRows())
	for rowIdx := range rows {
		rows[rowIdx] = make(elements.Row, len(mapping))
	}

	for source, alias := range mapping {
		column := record.Column(record.Schema().FieldIndices(source)[0])
		for rowIdx := 0; rowIdx < int(record.NumRows()); rowIdx++ {
			value, err := arrowops.ArrayValue(column, rowIdx)
			if err != nil {
				return nil, errs.Wrap(err, fmt.Errorf("column name: %s", source))
			}
			rows[rowIdx][alias] = value
		}
	}

	return rows, nil
}

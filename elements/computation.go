package elements

import (
	"context"
	"fmt"
)

type IComputation interface {
	Name() string
	InputColumns() ColumnMapping
	OutputColumns() []Column
	ComputeRow(ctx context.Context, row Row) (Outcome, error)
	IsValid() error
}

// RowComputation is the general purpose IComputation. Program specific
// computations either build one of these or implement IComputation
// themselves.
type RowComputation struct {
	name          string
	inputColumns  ColumnMapping
	outputColumns []Column
	computeFunc   RowFunc
}

func NewRowComputation(name string) *RowComputation {
	return &RowComputation{
		name:          name,
		inputColumns:  ColumnMapping{},
		outputColumns: []Column{},
	}
}

func (obj *RowComputation) Name() string {
	return obj.name
}

func (obj *RowComputation) InputColumns() ColumnMapping {
	return obj.inputColumns
}

func (obj *RowComputation) OutputColumns() []Column {
	return obj.outputColumns
}

func (obj *RowComputation) MapInputColumn(source string, alias string) *RowComputation {
	obj.inputColumns[source] = alias
	return obj
}

func (obj *RowComputation) AddOutputColumns(columns ...Column) *RowComputation {
	obj.outputColumns = append(obj.outputColumns, columns...)
	return obj
}

func (obj *RowComputation) SetComputeFunc(computeFunc RowFunc) *RowComputation {
	obj.computeFunc = computeFunc
	return obj
}

func (obj *RowComputation) ComputeRow(ctx context.Context, row Row) (Outcome, error) {
	if obj.computeFunc == nil {
		return Outcome{}, fmt.Errorf("%w| compute func not set", ErrNilComputation)
	}
	return obj.computeFunc(ctx, row)
}

func (obj *RowComputation) IsValid() error {
	if obj.name == "" {
		return fmt.Errorf("%w| name invalid", ErrComputationInvalid)
	}

	if len(obj.inputColumns) == 0 {
		return fmt.Errorf("%w| computation does not map any input columns", ErrComputationInvalid)
	}

	// each mapped name is uniq
	uniqAliases := make(map[string]string)
	for source, alias := range obj.inputColumns {
		if source == "" || alias == "" {
			return fmt.Errorf("%w| input column mapping has an empty name", ErrComputationInvalid)
		}
		if _, ok := uniqAliases[alias]; ok {
			return fmt.Errorf("%w| duplicate input column alias", ErrComputationInvalid)
		}
		uniqAliases[alias] = source
	}

	if len(obj.outputColumns) == 0 {
		return fmt.Errorf("%w| computation does not have output columns", ErrComputationInvalid)
	}

	uniqOutputColumns := make(map[string]struct{})
	for _, col := range obj.outputColumns {
		if !col.IsValid() {
			return fmt.Errorf("%w| computation has invalid output column", ErrComputationInvalid)
		}
		if _, ok := uniqOutputColumns[col.Name]; ok {
			return fmt.Errorf("%w| duplicate output column", ErrComputationInvalid)
		}
		uniqOutputColumns[col.Name] = struct{}{}
	}

	if obj.computeFunc == nil {
		return fmt.Errorf("%w| compute func not set", ErrComputationInvalid)
	}

	return nil
}

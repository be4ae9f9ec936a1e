package arrowops

import (
	"errors"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

func TestRecordRow(t *testing.T) {

	testCases := []struct {
		caseName string
		idx      int
		expRow   map[string]any
		expErr   error
	}{
		{
			caseName: "first-row",
			idx:      0,
			expRow:   map[string]any{"input_compound_id": int64(0), "canonical_smiles": "CCO"},
		},
		{
			caseName: "null-cell-is-nil",
			idx:      2,
			expRow:   map[string]any{"input_compound_id": int64(2), "canonical_smiles": nil},
		},
		{
			caseName: "index-out-of-bounds",
			idx:      10,
			expErr:   ErrIndexOutOfBounds,
		},
		{
			caseName: "negative-index",
			idx:      -1,
			expErr:   ErrIndexOutOfBounds,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.caseName, func(t *testing.T) {

			mem := memory.NewGoAllocator()
			rec := buildStructuresRecord(mem)

			row, err := RecordRow(rec, tc.idx)
			if !errors.Is(err, tc.expErr) {
				t.Errorf("expected error '%s' but received '%s'", tc.expErr, err)
				return
			}
			if tc.expErr != nil {
				return
			}

			if len(row) != len(tc.expRow) {
				t.Errorf("expected %d columns but received %d", len(tc.expRow), len(row))
				return
			}
			for name, expVal := range tc.expRow {
				if row[name] != expVal {
					t.Errorf("column %s: expected value '%v' but received '%v'", name, expVal, row[name])
				}
			}

		})
	}

}

func TestAppendRecordRow(t *testing.T) {

	mem := memory.NewGoAllocator()
	recBldr := array.NewRecordBuilder(mem, arrow.NewSchema(
		[]arrow.Field{
			{Name: "input_compound_id", Type: arrow.PrimitiveTypes.Int64},
			{Name: "canonical_smiles", Type: arrow.BinaryTypes.String, Nullable: true},
		},
		nil,
	))
	defer recBldr.Release()

	rows := []map[string]any{
		{"input_compound_id": int64(10), "canonical_smiles": "CCO"},
		{"input_compound_id": int64(11), "canonical_smiles": nil},
	}
	for _, row := range rows {
		if err := AppendRecordRow(recBldr, row); err != nil {
			t.Fatalf("AppendRecordRow failed: %v", err)
		}
	}

	rec := recBldr.NewRecord()
	if rec.NumRows() != 2 {
		t.Fatalf("expected 2 rows but received %d", rec.NumRows())
	}
	if rec.Column(0).(*array.Int64).Value(1) != 11 {
		t.Errorf("unexpected value in second row")
	}
	if !rec.Column(1).IsNull(1) {
		t.Errorf("expected null in second row of canonical_smiles")
	}

}

func TestAppendRecordRowErrors(t *testing.T) {

	testCases := []struct {
		caseName string
		row      map[string]any
		expErr   error
	}{
		{
			caseName: "missing-column",
			row:      map[string]any{"input_compound_id": int64(1)},
			expErr:   ErrColumnNotFound,
		},
		{
			caseName: "unexpected-value-type",
			row:      map[string]any{"input_compound_id": int64(1), "canonical_smiles": 42},
			expErr:   ErrUnexpectedValueType,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.caseName, func(t *testing.T) {

			mem := memory.NewGoAllocator()
			recBldr := array.NewRecordBuilder(mem, arrow.NewSchema(
				[]arrow.Field{
					{Name: "input_compound_id", Type: arrow.PrimitiveTypes.Int64},
					{Name: "canonical_smiles", Type: arrow.BinaryTypes.String, Nullable: true},
				},
				nil,
			))
			defer recBldr.Release()

			err := AppendRecordRow(recBldr, tc.row)
			if !errors.Is(err, tc.expErr) {
				t.Errorf("expected error '%s' but received '%s'", tc.expErr, err)
			}

		})
	}

}

func TestArrayValueNormalizesIntegerWidths(t *testing.T) {

	mem := memory.NewGoAllocator()
	arrBldr := array.NewInt32Builder(mem)
	defer arrBldr.Release()
	arrBldr.AppendValues([]int32{7, -3}, nil)
	arr := arrBldr.NewInt32Array()

	val, err := ArrayValue(arr, 0)
	if err != nil {
		t.Fatalf("ArrayValue failed: %v", err)
	}
	if v, ok := val.(int64); !ok || v != 7 {
		t.Errorf("expected int64 value 7 but received '%v' (%T)", val, val)
	}

}

package descriptor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/fedmol/descry/config"
	"github.com/fedmol/descry/elements"
	"github.com/fedmol/descry/transform"
)

func buildTestParameters(radius int, foldSize int, binarized bool) config.Parameters {
	return config.Parameters{
		Fingerprint: config.FingerprintParams{
			Radius:    radius,
			FoldSize:  foldSize,
			Binarized: binarized,
		},
	}
}

func buildTestCalculator(t *testing.T, key string, params config.Parameters) *Calculator {
	t.Helper()
	calculator, err := NewCalculator(config.Secret{Key: key}, params)
	if err != nil {
		t.Fatalf("building calculator: %s", err)
	}
	return calculator
}

func computeStructure(t *testing.T, calculator *Calculator, structure string) (elements.Outcome, error) {
	t.Helper()
	return calculator.ComputeRow(context.Background(), elements.Row{StructureParam: structure})
}

func parseIndexList(t *testing.T, formatted string) []int {
	t.Helper()
	trimmed := strings.Trim(formatted, "[]")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, ",")
	indices := make([]int, len(parts))
	for i, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil {
			t.Fatalf("parsing index list %s: %s", formatted, err)
		}
		indices[i] = value
	}
	return indices
}

func TestCalculatorIsDeterministic(t *testing.T) {
	params := buildTestParameters(3, 32000, false)
	calculator1 := buildTestCalculator(t, "shared-consortium-key", params)
	calculator2 := buildTestCalculator(t, "shared-consortium-key", params)

	structures := []string{
		"CCO",
		"c1ccccc1",
		"CC(=O)Oc1ccccc1C(=O)O",
		"CN1C=NC2=C1C(=O)N(C(=O)N2C)C",
	}
	for _, structure := range structures {
		outcome1, err1 := computeStructure(t, calculator1, structure)
		outcome2, err2 := computeStructure(t, calculator2, structure)
		if err1 != nil || err2 != nil {
			t.Errorf("unexpected errors for %s: %v, %v", structure, err1, err2)
			continue
		}
		if outcome1.Values[FeatureColumn] != outcome2.Values[FeatureColumn] {
			t.Errorf("feature indices differ for %s", structure)
		}
		if outcome1.Values[ValueColumn] != outcome2.Values[ValueColumn] {
			t.Errorf("feature values differ for %s", structure)
		}
	}
}

func TestCalculatorKeyChangesTheFingerprint(t *testing.T) {
	params := buildTestParameters(3, 4096, false)
	calculator1 := buildTestCalculator(t, "key-of-party-a", params)
	calculator2 := buildTestCalculator(t, "key-of-party-b", params)

	outcome1, err := computeStructure(t, calculator1, "CC(=O)Oc1ccccc1C(=O)O")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	outcome2, err := computeStructure(t, calculator2, "CC(=O)Oc1ccccc1C(=O)O")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if outcome1.Values[FeatureColumn] == outcome2.Values[FeatureColumn] {
		t.Errorf("expected different keys to scramble the indices differently")
		t.Log("indices", outcome1.Values[FeatureColumn])
	}
}

func TestCalculatorBinarizedClampsCounts(t *testing.T) {
	counted := buildTestCalculator(t, "shared-consortium-key", buildTestParameters(1, 1024, false))
	binarized := buildTestCalculator(t, "shared-consortium-key", buildTestParameters(1, 1024, true))

	// radius 1 over "CCCC" gives a single gram "C" seen four times
	countedOutcome, err := computeStructure(t, counted, "CCCC")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	binarizedOutcome, err := computeStructure(t, binarized, "CCCC")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if countedOutcome.Values[ValueColumn] != "[4]" {
		t.Errorf("expected counted value [4] but got %s", countedOutcome.Values[ValueColumn])
	}
	if binarizedOutcome.Values[ValueColumn] != "[1]" {
		t.Errorf("expected binarized value [1] but got %s", binarizedOutcome.Values[ValueColumn])
	}
	if countedOutcome.Values[FeatureColumn] != binarizedOutcome.Values[FeatureColumn] {
		t.Errorf("expected the same indices for the same key")
	}
}

func TestCalculatorIndicesStayInsideTheFold(t *testing.T) {
	foldSize := 8
	calculator := buildTestCalculator(t, "shared-consortium-key", buildTestParameters(2, foldSize, false))

	structures := []string{"CCO", "c1ccccc1", "CC(=O)O", "CN=C=O", "N#N"}
	for _, structure := range structures {
		outcome, err := computeStructure(t, calculator, structure)
		if err != nil {
			t.Fatalf("unexpected error for %s: %s", structure, err)
		}

		indices := parseIndexList(t, outcome.Values[FeatureColumn].(string))
		values := parseIndexList(t, outcome.Values[ValueColumn].(string))
		if len(indices) == 0 || len(indices) != len(values) {
			t.Errorf("expected matching non-empty lists for %s", structure)
			continue
		}
		previous := -1
		for _, index := range indices {
			if index < 0 || index >= foldSize {
				t.Errorf("index %d out of fold bounds for %s", index, structure)
			}
			if index <= previous {
				t.Errorf("indices not strictly ascending for %s", structure)
			}
			previous = index
		}
	}
}

func TestCalculatorRejectsInvalidStructures(t *testing.T) {
	calculator := buildTestCalculator(t, "shared-consortium-key", buildTestParameters(2, 1024, false))

	testCases := []struct {
		caseName   string
		structure  string
		expMessage string
	}{
		{caseName: "empty", structure: "", expMessage: "structure is empty"},
		{caseName: "open-paren", structure: "CC(C", expMessage: "unbalanced '(' in structure"},
		{caseName: "close-before-open", structure: "CC)C", expMessage: "unbalanced ')' at position 2"},
		{caseName: "open-bracket", structure: "C[nH", expMessage: "unbalanced '[' in structure"},
		{caseName: "illegal-byte", structure: "C C", expMessage: "illegal character ' ' at position 1"},
	}
	for _, tc := range testCases {
		t.Run(tc.caseName, func(t *testing.T) {
			_, err := computeStructure(t, calculator, tc.structure)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if err.Error() != tc.expMessage {
				t.Errorf("expected message %q but got %q", tc.expMessage, err.Error())
			}
		})
	}
}

func TestCalculatorRowContract(t *testing.T) {
	calculator := buildTestCalculator(t, "shared-consortium-key", buildTestParameters(2, 1024, false))
	ctx := context.Background()

	if _, err := calculator.ComputeRow(ctx, elements.Row{}); err == nil {
		t.Errorf("expected an error for a missing structure")
	}
	if _, err := calculator.ComputeRow(ctx, elements.Row{StructureParam: nil}); err == nil {
		t.Errorf("expected an error for a null structure")
	}
	if _, err := calculator.ComputeRow(ctx, elements.Row{StructureParam: int64(42)}); err == nil {
		t.Errorf("expected an error for a non string structure")
	}
}

func TestNewCalculatorSetupErrors(t *testing.T) {
	testCases := []struct {
		caseName string
		key      string
		params   config.Parameters
		expErr   error
	}{
		{
			caseName: "empty-secret",
			key:      "",
			params:   buildTestParameters(2, 1024, false),
			expErr:   ErrEmptySecretKey,
		},
		{
			caseName: "radius-too-small",
			key:      "shared-consortium-key",
			params:   buildTestParameters(0, 1024, false),
			expErr:   ErrInvalidFingerprintParams,
		},
		{
			caseName: "fold-size-too-small",
			key:      "shared-consortium-key",
			params:   buildTestParameters(2, 1, false),
			expErr:   ErrInvalidFingerprintParams,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.caseName, func(t *testing.T) {
			_, err := NewCalculator(config.Secret{Key: tc.key}, tc.params)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !errors.Is(err, tc.expErr) {
				t.Errorf("expected error %s but got %s", tc.expErr, err)
			}
		})
	}
}

func TestCalculatorWithTransformer(t *testing.T) {
	ctx := context.Background()
	mem := memory.NewGoAllocator()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	params := buildTestParameters(3, 32000, true)
	calculator := buildTestCalculator(t, "shared-consortium-key", params)

	transformer, err := transform.NewTransformer(logger, mem, calculator, transform.TransformerOptions{WorkerCount: 2})
	if err != nil {
		t.Fatalf("building transformer: %s", err)
	}

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "input_compound_id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "canonical_smiles", Type: arrow.BinaryTypes.String},
	}, nil)
	recordBuilder := array.NewRecordBuilder(mem, schema)
	defer recordBuilder.Release()
	recordBuilder.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2, 3}, nil)
	recordBuilder.Field(1).(*array.StringBuilder).AppendValues([]string{"CCO", "", "c1ccccc1"}, nil)
	record := recordBuilder.NewRecord()
	defer record.Release()

	successRecord, failureRecord, err := transformer.Process(ctx, record)
	if err != nil {
		t.Fatalf("processing record: %s", err)
	}
	defer successRecord.Release()
	defer failureRecord.Release()

	if successRecord.NumRows() != 2 {
		t.Errorf("expected 2 succeeded rows but got %d", successRecord.NumRows())
	}
	if failureRecord.NumRows() != 1 {
		t.Errorf("expected 1 failed row but got %d", failureRecord.NumRows())
	}

	featIdxs := successRecord.Schema().FieldIndices(FeatureColumn)
	valIdxs := successRecord.Schema().FieldIndices(ValueColumn)
	if len(featIdxs) != 1 || len(valIdxs) != 1 {
		t.Fatalf("expected the fingerprint columns on the succeeded record")
	}
	for rowIdx := 0; rowIdx < int(successRecord.NumRows()); rowIdx++ {
		feat := successRecord.Column(featIdxs[0]).(*array.String).Value(rowIdx)
		if !strings.HasPrefix(feat, "[") || !strings.HasSuffix(feat, "]") {
			t.Errorf("unexpected feature list format: %s", feat)
		}
	}

	errIdxs := failureRecord.Schema().FieldIndices(transform.DefaultErrorColumn)
	if len(errIdxs) != 1 {
		t.Fatalf("expected the error message column on the failed record")
	}
	if message := failureRecord.Column(errIdxs[0]).(*array.String).Value(0); message != "structure is empty" {
		t.Errorf("expected the row error message but got %q", message)
	}
}

package refhash

import (
	"context"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"

	arrowops "github.com/fedmol/descry/arrowOps"
	"github.com/fedmol/descry/config"
	"github.com/fedmol/descry/descriptor"
	"github.com/fedmol/descry/transform"
)

const GeneratedHashFileName = "generated_hash.json"

//go:embed structures.txt
var referenceStructuresFile string

type hashFile struct {
	ReferenceHash string `json:"reference_hash"`
}

// Generate runs the fingerprint calculation over the embedded reference
// set and digests every output row. Two parties get the same hash only
// when their key and parameters agree, so comparing hashes up front
// catches configuration drift before a full run.
func Generate(
	ctx context.Context,
	logger *slog.Logger,
	mem *memory.GoAllocator,
	secret config.Secret,
	params config.Parameters,
) (string, error) {
	calculator, err := descriptor.NewCalculator(secret, params)
	if err != nil {
		return "", err
	}

	// a single worker keeps the reference run identical everywhere
	transformer, err := transform.NewTransformer(logger, mem, calculator, transform.TransformerOptions{
		WorkerCount: 1,
	})
	if err != nil {
		return "", err
	}

	structureColumn := params.StructureColumn
	if structureColumn == "" {
		structureColumn = config.DefaultStructureColumn
	}
	record := buildReferenceRecord(mem, structureColumn)
	defer record.Release()

	successRecord, failureRecord, err := transformer.Process(ctx, record)
	if err != nil {
		return "", err
	}
	defer successRecord.Release()
	defer failureRecord.Release()

	digest := sha256.New()
	if err := digestRecord(digest, successRecord); err != nil {
		return "", err
	}
	if err := digestRecord(digest, failureRecord); err != nil {
		return "", err
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

// LoadReference reads a consortium hash file of the form
// {"reference_hash": "..."}.
func LoadReference(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errs.Wrap(err, fmt.Errorf("reading reference hash file %s", path))
	}

	var file hashFile
	if err := json.Unmarshal(data, &file); err != nil {
		return "", errs.Wrap(err, fmt.Errorf("parsing reference hash file %s", path))
	}
	if file.ReferenceHash == "" {
		return "", errs.NewStackError(fmt.Errorf("%w| file: %s", ErrNoReferenceHash, path))
	}
	return file.ReferenceHash, nil
}

// Verify compares a generated hash against the hash file at path.
func Verify(path string, generatedHash string) error {
	referenceHash, err := LoadReference(path)
	if err != nil {
		return err
	}
	if referenceHash != generatedHash {
		return errs.NewStackError(fmt.Errorf(
			"%w| reference: %s, generated: %s", ErrHashMismatch, referenceHash, generatedHash,
		))
	}
	return nil
}

// MarshalGenerated renders a generated hash in the hash file format.
func MarshalGenerated(generatedHash string) ([]byte, error) {
	data, err := json.MarshalIndent(hashFile{ReferenceHash: generatedHash}, "", "  ")
	if err != nil {
		return nil, errs.NewStackError(err)
	}
	return append(data, '\n'), nil
}

// WriteGenerated writes the generated hash next to the run outputs so
// it can be shared and compared later.
func WriteGenerated(path string, generatedHash string) error {
	data, err := MarshalGenerated(generatedHash)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errs.Wrap(err, fmt.Errorf("writing generated hash file %s", path))
	}
	return nil
}

func referenceStructures() []string {
	lines := strings.Split(referenceStructuresFile, "\n")
	structures := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		structures = append(structures, line)
	}
	return structures
}

func buildReferenceRecord(mem *memory.GoAllocator, structureColumn string) arrow.Record {
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "input_compound_id", Type: arrow.PrimitiveTypes.Int64},
		{Name: structureColumn, Type: arrow.BinaryTypes.String},
	}, nil)

	recordBuilder := array.NewRecordBuilder(mem, schema)
	defer recordBuilder.Release()

	for i, structure := range referenceStructures() {
		recordBuilder.Field(0).(*array.Int64Builder).Append(int64(i))
		recordBuilder.Field(1).(*array.StringBuilder).Append(structure)
	}
	return recordBuilder.NewRecord()
}

// digestRecord writes every row into the digest with column names in
// sorted order, so the hash does not depend on field layout.
func digestRecord(digest hash.Hash, record arrow.Record) error {
	names := make([]string, 0, int(record.NumCols()))
	for _, field := range record.Schema().Fields() {
		names = append(names, field.Name)
	}
	slices.Sort(names)

	for rowIdx := 0; rowIdx < int(record.NumRows()); rowIdx++ {
		row, err := arrowops.RecordRow(record, rowIdx)
		if err != nil {
			return errs.Wrap(err, fmt.Errorf("record row: %d", rowIdx))
		}
		for _, name := range names {
			fmt.Fprintf(digest, "%s=%v;", name, row[name])
		}
		digest.Write([]byte{'\n'})
	}
	digest.Write([]byte("--\n"))
	return nil
}

package descriptor

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"

	"github.com/fedmol/descry/config"
	"github.com/fedmol/descry/elements"
)

const (
	// StructureParam is the name ComputeRow reads the structure by
	// after input column mapping.
	StructureParam = "structure"

	FeatureColumn = "fp_feat"
	ValueColumn   = "fp_val"
)

// Calculator derives secret-keyed folded fingerprints from structure
// line notation. Substrings of length 1 up to the radius are hashed
// and folded into a fixed width, then every index is moved to its
// keyed position. Equal structure, parameters and key always give the
// same fingerprint; without the key the indices carry no positional
// meaning.
type Calculator struct {
	params          config.FingerprintParams
	structureColumn string
	permutation     []uint32
}

func NewCalculator(secret config.Secret, params config.Parameters) (*Calculator, error) {
	if secret.Key == "" {
		return nil, errs.NewStackError(ErrEmptySecretKey)
	}

	fingerprint := params.Fingerprint
	if fingerprint.Radius < 1 || fingerprint.FoldSize < 2 {
		return nil, errs.NewStackError(fmt.Errorf(
			"%w| radius: %d, fold size: %d",
			ErrInvalidFingerprintParams, fingerprint.Radius, fingerprint.FoldSize,
		))
	}

	structureColumn := params.StructureColumn
	if structureColumn == "" {
		structureColumn = config.DefaultStructureColumn
	}

	return &Calculator{
		params:          fingerprint,
		structureColumn: structureColumn,
		permutation:     buildPermutation(secret.Key, fingerprint.FoldSize),
	}, nil
}

func (obj *Calculator) Name() string {
	return "keyed_fingerprint"
}

func (obj *Calculator) InputColumns() elements.ColumnMapping {
	return elements.ColumnMapping{obj.structureColumn: StructureParam}
}

func (obj *Calculator) OutputColumns() []elements.Column {
	return []elements.Column{
		elements.NewColumn(FeatureColumn, arrow.BinaryTypes.String),
		elements.NewColumn(ValueColumn, arrow.BinaryTypes.String),
	}
}

func (obj *Calculator) IsValid() error {
	if len(obj.permutation) != obj.params.FoldSize {
		return errs.NewStackError(fmt.Errorf(
			"%w| permutation length: %d, fold size: %d",
			ErrInvalidFingerprintParams, len(obj.permutation), obj.params.FoldSize,
		))
	}
	return nil
}

// ComputeRow builds the fingerprint for one structure. Errors returned
// here describe the row and end up in the failure table; they never
// stop the batch.
func (obj *Calculator) ComputeRow(ctx context.Context, row elements.Row) (elements.Outcome, error) {
	rawValue, ok := row[StructureParam]
	if !ok || rawValue == nil {
		return elements.Outcome{}, fmt.Errorf("structure is missing")
	}
	structure, ok := rawValue.(string)
	if !ok {
		return elements.Outcome{}, fmt.Errorf("structure is not a string, got %T", rawValue)
	}
	if err := validateStructure(structure); err != nil {
		return elements.Outcome{}, err
	}

	indices, values := obj.scramble(obj.featureCounts(structure))

	return elements.NewSuccessOutcome(elements.Row{
		FeatureColumn: formatUint32List(indices),
		ValueColumn:   formatInt64List(values),
	}), nil
}

// featureCounts hashes every substring of length 1..Radius and folds
// it into the configured fingerprint width.
func (obj *Calculator) featureCounts(structure string) map[uint32]int64 {
	hasher := fnv.New32a()
	foldSize := uint32(obj.params.FoldSize)

	counts := make(map[uint32]int64)
	for length := 1; length <= obj.params.Radius && length <= len(structure); length++ {
		for start := 0; start+length <= len(structure); start++ {
			hasher.Reset()
			hasher.Write([]byte(structure[start : start+length]))
			counts[hasher.Sum32()%foldSize]++
		}
	}
	return counts
}

// scramble moves every folded index to its keyed position and returns
// the surviving indices in ascending order with their values.
func (obj *Calculator) scramble(counts map[uint32]int64) ([]uint32, []int64) {
	scrambled := make(map[uint32]int64, len(counts))
	for folded, count := range counts {
		scrambled[obj.permutation[folded]] = count
	}

	indices := make([]uint32, 0, len(scrambled))
	for index := range scrambled {
		indices = append(indices, index)
	}
	slices.Sort(indices)

	values := make([]int64, len(indices))
	for i, index := range indices {
		if obj.params.Binarized {
			values[i] = 1
		} else {
			values[i] = scrambled[index]
		}
	}
	return indices, values
}

// buildPermutation shuffles the identity mapping of [0, foldSize) with
// a generator seeded from the secret key. Equal keys give equal
// permutations on every platform.
func buildPermutation(key string, foldSize int) []uint32 {
	digest := sha256.Sum256([]byte(key))
	source := rand.New(rand.NewPCG(
		binary.LittleEndian.Uint64(digest[0:8]),
		binary.LittleEndian.Uint64(digest[8:16]),
	))

	permutation := make([]uint32, foldSize)
	for i := range permutation {
		permutation[i] = uint32(i)
	}
	for i := foldSize - 1; i > 0; i-- {
		j := source.IntN(i + 1)
		permutation[i], permutation[j] = permutation[j], permutation[i]
	}
	return permutation
}

func formatUint32List(values []uint32) string {
	var builder strings.Builder
	builder.WriteByte('[')
	for i, value := range values {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(strconv.FormatUint(uint64(value), 10))
	}
	builder.WriteByte(']')
	return builder.String()
}

func formatInt64List(values []int64) string {
	var builder strings.Builder
	builder.WriteByte('[')
	for i, value := range values {
		if i > 0 {
			builder.WriteByte(',')
		}
		builder.WriteString(strconv.FormatInt(value, 10))
	}
	builder.WriteByte(']')
	return builder.String()
}

package storage

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/linkedin/goavro/v2"

	arrowops "github.com/fedmol/descry/arrowOps"
)

type avroField struct {
	Name string   `json:"name"`
	Type []string `json:"type"`
}

type avroSchemaTemplate struct {
	Type   string      `json:"type"`
	Name   string      `json:"name"`
	Fields []avroField `json:"fields"`
}

// WriteAvro writes a record as an avro object container file. Every
// field is a union with null so original columns keep their nulls.
func WriteAvro(w io.Writer, record arrow.Record) error {
	codec, err := avroCodecForSchema(record.Schema())
	if err != nil {
		return err
	}

	ocfWriter, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:     w,
		Codec: codec,
	})
	if err != nil {
		return errs.Wrap(err, fmt.Errorf("building avro container writer"))
	}

	rows := make([]interface{}, record.NumRows())
	for rowIdx := 0; rowIdx < int(record.NumRows()); rowIdx++ {
		native, err := avroNativeRow(record, rowIdx)
		if err != nil {
			return errs.Wrap(err, fmt.Errorf("record row: %d", rowIdx))
		}
		rows[rowIdx] = native
	}

	if err := ocfWriter.Append(rows); err != nil {
		return errs.Wrap(err, fmt.Errorf("writing avro rows"))
	}
	return nil
}

// ReadAvro reads an avro object container file into a single record,
// deriving the arrow schema from the container's own schema.
func ReadAvro(mem *memory.GoAllocator, r io.Reader) (arrow.Record, error) {
	ocfReader, err := goavro.NewOCFReader(r)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("opening avro container"))
	}

	schema, err := arrowSchemaForAvro(ocfReader.Codec().Schema())
	if err != nil {
		return nil, err
	}

	recordBuilder := array.NewRecordBuilder(mem, schema)
	defer recordBuilder.Release()

	numRows := 0
	for ocfReader.Scan() {
		native, err := ocfReader.Read()
		if err != nil {
			return nil, errs.Wrap(err, fmt.Errorf("reading avro row"))
		}
		nativeMap, ok := native.(map[string]interface{})
		if !ok {
			return nil, errs.NewStackError(fmt.Errorf("%w| avro row is not a record", ErrUnsupportedAvroType))
		}

		row := make(map[string]any, len(nativeMap))
		for name, value := range nativeMap {
			row[name] = unwrapAvroUnion(value)
		}
		if err := arrowops.AppendRecordRow(recordBuilder, row); err != nil {
			return nil, errs.Wrap(err, fmt.Errorf("appending avro row %d", numRows))
		}
		numRows++
	}
	if err := ocfReader.Err(); err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("scanning avro container"))
	}
	if numRows == 0 {
		return nil, errs.NewStackError(fmt.Errorf("%w| avro container has no rows", ErrEmptyTable))
	}

	return recordBuilder.NewRecord(), nil
}

func avroCodecForSchema(schema *arrow.Schema) (*goavro.Codec, error) {
	template := avroSchemaTemplate{
		Type:   "record",
		Name:   "tableRow",
		Fields: make([]avroField, 0, schema.NumFields()),
	}

	for _, field := range schema.Fields() {
		avroType, err := avroTypeForArrow(field.Type)
		if err != nil {
			return nil, errs.Wrap(err, fmt.Errorf("column name: %s", field.Name))
		}
		template.Fields = append(template.Fields, avroField{
			Name: field.Name,
			Type: []string{"null", avroType},
		})
	}

	codecData, err := json.Marshal(template)
	if err != nil {
		return nil, errs.NewStackError(err)
	}
	codec, err := goavro.NewCodec(string(codecData))
	if err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("building avro codec"))
	}
	return codec, nil
}

func avroTypeForArrow(arrowType arrow.DataType) (string, error) {
	switch arrowType.ID() {
	case arrow.BOOL:
		return "boolean", nil
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64:
		return "long", nil
	case arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return "long", nil
	case arrow.FLOAT32, arrow.FLOAT64:
		return "double", nil
	case arrow.STRING:
		return "string", nil
	case arrow.BINARY:
		return "bytes", nil
	case arrow.DATE32, arrow.DATE64, arrow.TIMESTAMP:
		return "long", nil
	default:
		return "", errs.NewStackError(fmt.Errorf(
			"%w| arrow type: %s", ErrUnsupportedAvroType, arrowType.Name(),
		))
	}
}

// avroNativeRow builds the goavro native form of one row. Values are
// wrapped in their union branch; nulls stay bare.
func avroNativeRow(record arrow.Record, rowIdx int) (map[string]interface{}, error) {
	row, err := arrowops.RecordRow(record, rowIdx)
	if err != nil {
		return nil, err
	}

	native := make(map[string]interface{}, len(row))
	for _, field := range record.Schema().Fields() {
		value := row[field.Name]
		if value == nil {
			native[field.Name] = nil
			continue
		}
		avroType, err := avroTypeForArrow(field.Type)
		if err != nil {
			return nil, err
		}
		native[field.Name] = map[string]interface{}{avroType: value}
	}
	return native, nil
}

func unwrapAvroUnion(value interface{}) any {
	if branch, ok := value.(map[string]interface{}); ok && len(branch) == 1 {
		for _, inner := range branch {
			return inner
		}
	}
	return value
}

func arrowSchemaForAvro(avroSchema string) (*arrow.Schema, error) {
	// the read side accepts both plain and union field types, so files
	// written by other tools still load
	var template struct {
		Fields []struct {
			Name string `json:"name"`
			Type any    `json:"type"`
		} `json:"fields"`
	}
	if err := json.Unmarshal([]byte(avroSchema), &template); err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("parsing avro schema"))
	}

	fields := make([]arrow.Field, 0, len(template.Fields))
	for _, field := range template.Fields {
		branch, err := avroValueBranch(field.Type)
		if err != nil {
			return nil, errs.Wrap(err, fmt.Errorf("column name: %s", field.Name))
		}

		var dtype arrow.DataType
		switch branch {
		case "boolean":
			dtype = arrow.FixedWidthTypes.Boolean
		case "long":
			dtype = arrow.PrimitiveTypes.Int64
		case "double":
			dtype = arrow.PrimitiveTypes.Float64
		case "string":
			dtype = arrow.BinaryTypes.String
		case "bytes":
			dtype = arrow.BinaryTypes.Binary
		default:
			return nil, errs.NewStackError(fmt.Errorf(
				"%w| avro type %s for column %s", ErrUnsupportedAvroType, branch, field.Name,
			))
		}
		fields = append(fields, arrow.Field{Name: field.Name, Type: dtype, Nullable: true})
	}
	return arrow.NewSchema(fields, nil), nil
}

func avroValueBranch(fieldType any) (string, error) {
	switch v := fieldType.(type) {
	case string:
		return v, nil
	case []any:
		for _, member := range v {
			if name, ok := member.(string); ok && name != "null" {
				return name, nil
			}
		}
	}
	return "", errs.NewStackError(fmt.Errorf("%w| field has no value branch", ErrUnsupportedAvroType))
}

package arrowops

import "errors"

var (
	ErrUnsupportedDataType = errors.New("unsupported data type")
	ErrUnexpectedValueType = errors.New("unexpected value type")
	ErrColumnNotFound      = errors.New("column not found")
	ErrIndexOutOfBounds    = errors.New("index out of bounds")
	ErrNoRecords           = errors.New("no records")
	ErrSchemasNotEqual     = errors.New("schemas not equal")
)

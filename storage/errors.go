package storage

import "errors"

var (
	ErrUnsupportedFormat     = errors.New("unsupported table format")
	ErrUnsupportedAvroType   = errors.New("unsupported avro type conversion")
	ErrInvalidObjectLocation = errors.New("invalid object storage location")
	ErrObjectStorageNotSet   = errors.New("object storage not configured")
	ErrRunDirectoryExists    = errors.New("run directory already exists")
	ErrEmptyTable            = errors.New("table has no rows")
)

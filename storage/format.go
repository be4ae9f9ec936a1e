package storage

import (
	"fmt"
	"strings"

	"github.com/alekLukanen/errs"
)

type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
	FormatAvro    Format = "avro"
)

func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(value)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatParquet:
		return FormatParquet, nil
	case FormatAvro:
		return FormatAvro, nil
	default:
		return "", errs.NewStackError(fmt.Errorf("%w| format: %s", ErrUnsupportedFormat, value))
	}
}

func (obj Format) Extension() string {
	return string(obj)
}

// FormatFromLocation infers a table format from the file extension of a
// local path or object location.
func FormatFromLocation(location string) (Format, error) {
	idx := strings.LastIndexByte(location, '.')
	if idx < 0 || idx == len(location)-1 {
		return "", errs.NewStackError(fmt.Errorf("%w| location has no file extension: %s", ErrUnsupportedFormat, location))
	}
	return ParseFormat(location[idx+1:])
}

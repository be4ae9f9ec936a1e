package storage

import (
	"errors"
	"fmt"
	"io"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/csv"
	"github.com/apache/arrow/go/v17/arrow/memory"

	arrowops "github.com/fedmol/descry/arrowOps"
)

// ReadCSV reads a headered csv file into a single record, inferring the
// column types from the data. Empty cells are read as nulls.
func ReadCSV(mem *memory.GoAllocator, r io.Reader) (arrow.Record, error) {
	reader := csv.NewInferringReader(
		r,
		csv.WithHeader(true),
		csv.WithChunk(-1),
		csv.WithAllocator(mem),
		csv.WithNullReader(true, ""),
	)
	defer reader.Release()

	records := make([]arrow.Record, 0, 1)
	defer func() {
		for _, record := range records {
			record.Release()
		}
	}()
	for reader.Next() {
		record := reader.Record()
		record.Retain()
		records = append(records, record)
	}
	if err := reader.Err(); err != nil {
		// the reader reports a bare EOF when the file has no header row
		if errors.Is(err, io.EOF) {
			return nil, errs.NewStackError(fmt.Errorf("%w| csv data has no rows", ErrEmptyTable))
		}
		return nil, errs.Wrap(err, fmt.Errorf("reading csv data"))
	}
	if len(records) == 0 {
		return nil, errs.NewStackError(fmt.Errorf("%w| csv data has no rows", ErrEmptyTable))
	}

	return arrowops.ConcatenateRecords(mem, records...)
}

// WriteCSV writes a record as a headered csv file. Nulls are written as
// empty cells, matching what ReadCSV expects back.
func WriteCSV(w io.Writer, record arrow.Record) error {
	writer := csv.NewWriter(
		w,
		record.Schema(),
		csv.WithHeader(true),
		csv.WithNullWriter(""),
	)
	if err := writer.Write(record); err != nil {
		return errs.Wrap(err, fmt.Errorf("writing csv data"))
	}
	if err := writer.Flush(); err != nil {
		return errs.Wrap(err, fmt.Errorf("flushing csv data"))
	}
	return nil
}

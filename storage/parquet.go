package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/apache/arrow/go/v17/parquet"
	parquetFileUtils "github.com/apache/arrow/go/v17/parquet/file"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"

	arrowops "github.com/fedmol/descry/arrowOps"
)

// ReadParquet reads a parquet file into a single record.
func ReadParquet(ctx context.Context, mem *memory.GoAllocator, r parquet.ReaderAtSeeker) (arrow.Record, error) {
	parquetFileReader, err := parquetFileUtils.NewParquetReader(r)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("opening parquet data"))
	}
	defer parquetFileReader.Close()

	parquetReadProps := pqarrow.ArrowReadProperties{
		Parallel:  true,
		BatchSize: 1 << 20,
	}
	arrowFileReader, err := pqarrow.NewFileReader(parquetFileReader, parquetReadProps, mem)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("building parquet arrow reader"))
	}

	recordReader, err := arrowFileReader.GetRecordReader(ctx, nil, nil)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("building parquet record reader"))
	}
	defer recordReader.Release()

	records := make([]arrow.Record, 0)
	defer func() {
		for _, record := range records {
			record.Release()
		}
	}()
	for recordReader.Next() {
		record := recordReader.Record()
		record.Retain()
		records = append(records, record)
	}
	if err := recordReader.Err(); err != nil && err != io.EOF {
		return nil, errs.Wrap(err, fmt.Errorf("reading parquet records"))
	}
	if len(records) == 0 {
		return nil, errs.NewStackError(fmt.Errorf("%w| parquet data has no rows", ErrEmptyTable))
	}

	return arrowops.ConcatenateRecords(mem, records...)
}

// WriteParquet writes a record as a parquet file with column statistics
// enabled.
func WriteParquet(w io.Writer, record arrow.Record) error {
	parquetWriteProps := parquet.NewWriterProperties(parquet.WithStats(true))
	arrowWriteProps := pqarrow.NewArrowWriterProperties()

	parquetFileWriter, err := pqarrow.NewFileWriter(record.Schema(), w, parquetWriteProps, arrowWriteProps)
	if err != nil {
		return errs.Wrap(err, fmt.Errorf("building parquet writer"))
	}

	if err := parquetFileWriter.Write(record); err != nil {
		parquetFileWriter.Close()
		return errs.Wrap(err, fmt.Errorf("writing parquet data"))
	}
	if err := parquetFileWriter.Close(); err != nil {
		return errs.Wrap(err, fmt.Errorf("closing parquet writer"))
	}
	return nil
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alekLukanen/errs"
	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

type IObjectStorage interface {
	Upload(ctx context.Context, bucket, key string, body []byte) error
	Download(ctx context.Context, bucket, key string) ([]byte, error)
}

// TableStorage reads and writes whole tables at local paths or
// s3://bucket/key locations, in any of the supported formats.
type TableStorage struct {
	logger        *slog.Logger
	mem           *memory.GoAllocator
	objectStorage IObjectStorage
}

// NewTableStorage builds a TableStorage. The object storage may be nil
// when only local paths are used.
func NewTableStorage(
	logger *slog.Logger,
	mem *memory.GoAllocator,
	objectStorage IObjectStorage,
) *TableStorage {
	return &TableStorage{
		logger:        logger,
		mem:           mem,
		objectStorage: objectStorage,
	}
}

func (obj *TableStorage) ReadTable(ctx context.Context, location string, format Format) (arrow.Record, error) {
	obj.logger.Info("reading table", slog.String("location", location), slog.String("format", string(format)))

	if IsObjectLocation(location) {
		data, err := obj.ReadFile(ctx, location)
		if err != nil {
			return nil, err
		}
		return obj.readTableFrom(ctx, bytes.NewReader(data), format)
	}

	file, err := os.Open(location)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("opening table file %s", location))
	}
	defer file.Close()
	return obj.readTableFrom(ctx, file, format)
}

func (obj *TableStorage) WriteTable(ctx context.Context, record arrow.Record, location string, format Format) error {
	obj.logger.Info("writing table",
		slog.String("location", location),
		slog.String("format", string(format)),
		slog.Int64("rows", record.NumRows()),
	)

	if IsObjectLocation(location) {
		var buffer bytes.Buffer
		if err := obj.writeTableTo(&buffer, record, format); err != nil {
			return err
		}
		return obj.WriteFile(ctx, location, buffer.Bytes())
	}

	file, err := os.Create(location)
	if err != nil {
		return errs.Wrap(err, fmt.Errorf("creating table file %s", location))
	}
	if err := obj.writeTableTo(file, record, format); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return errs.Wrap(err, fmt.Errorf("closing table file %s", location))
	}
	return nil
}

// ReadFile reads raw bytes from a local path or object location.
func (obj *TableStorage) ReadFile(ctx context.Context, location string) ([]byte, error) {
	if !IsObjectLocation(location) {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, errs.Wrap(err, fmt.Errorf("reading file %s", location))
		}
		return data, nil
	}

	if obj.objectStorage == nil {
		return nil, errs.NewStackError(fmt.Errorf("%w| location: %s", ErrObjectStorageNotSet, location))
	}
	bucket, key, err := ParseObjectLocation(location)
	if err != nil {
		return nil, err
	}
	data, err := obj.objectStorage.Download(ctx, bucket, key)
	if err != nil {
		return nil, errs.Wrap(err, fmt.Errorf("downloading object %s", location))
	}
	return data, nil
}

// WriteFile writes raw bytes to a local path or object location.
func (obj *TableStorage) WriteFile(ctx context.Context, location string, data []byte) error {
	if !IsObjectLocation(location) {
		if err := os.WriteFile(location, data, 0o644); err != nil {
			return errs.Wrap(err, fmt.Errorf("writing file %s", location))
		}
		return nil
	}

	if obj.objectStorage == nil {
		return errs.NewStackError(fmt.Errorf("%w| location: %s", ErrObjectStorageNotSet, location))
	}
	bucket, key, err := ParseObjectLocation(location)
	if err != nil {
		return err
	}
	if err := obj.objectStorage.Upload(ctx, bucket, key, data); err != nil {
		return errs.Wrap(err, fmt.Errorf("uploading object %s", location))
	}
	return nil
}

type tableSource interface {
	io.Reader
	io.ReaderAt
	io.Seeker
}

func (obj *TableStorage) readTableFrom(ctx context.Context, r tableSource, format Format) (arrow.Record, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(obj.mem, r)
	case FormatParquet:
		return ReadParquet(ctx, obj.mem, r)
	case FormatAvro:
		return ReadAvro(obj.mem, r)
	default:
		return nil, errs.NewStackError(fmt.Errorf("%w| format: %s", ErrUnsupportedFormat, format))
	}
}

func (obj *TableStorage) writeTableTo(w io.Writer, record arrow.Record, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, record)
	case FormatParquet:
		return WriteParquet(w, record)
	case FormatAvro:
		return WriteAvro(w, record)
	default:
		return errs.NewStackError(fmt.Errorf("%w| format: %s", ErrUnsupportedFormat, format))
	}
}

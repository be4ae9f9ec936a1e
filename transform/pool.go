package transform

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alekLukanen/errs"
	"golang.org/x/sync/errgroup"

	"github.com/fedmol/descry/elements"
)

type PoolOptions struct {
	WorkerCount int
}

// Pool maps a row computation over a slice of rows with a fixed number
// of workers. Outcome i always belongs to row i.
type Pool struct {
	logger      *slog.Logger
	workerCount int
}

func NewPool(logger *slog.Logger, options PoolOptions) (*Pool, error) {
	if options.WorkerCount < 1 {
		return nil, errs.NewStackError(fmt.Errorf(
			"%w| worker count: %d", elements.ErrInvalidWorkerCount, options.WorkerCount,
		))
	}
	return &Pool{
		logger:      logger,
		workerCount: options.WorkerCount,
	}, nil
}

func (obj *Pool) WorkerCount() int {
	return obj.workerCount
}

// Map computes an outcome for every row. A row error or panic becomes
// that row's failed outcome and never affects sibling rows; only
// context cancellation aborts the whole call.
func (obj *Pool) Map(ctx context.Context, rows []elements.Row, computeFunc elements.RowFunc) ([]elements.Outcome, error) {
	if computeFunc == nil {
		return nil, errs.NewStackError(fmt.Errorf("%w| compute func is nil", elements.ErrNilComputation))
	}

	outcomes := make([]elements.Outcome, len(rows))
	if len(rows) == 0 {
		return outcomes, nil
	}

	// a single worker runs on the caller goroutine
	if obj.workerCount == 1 {
		for rowIdx := range rows {
			if err := ctx.Err(); err != nil {
				return nil, errs.Wrap(err, fmt.Errorf("canceled at row %d", rowIdx))
			}
			outcomes[rowIdx] = obj.computeRow(ctx, computeFunc, rows[rowIdx])
		}
		return outcomes, nil
	}

	// each worker owns a contiguous range of rows and writes outcomes
	// only at its own indices, so the input order is kept without any
	// locking or collection step
	errGroup, groupCtx := errgroup.WithContext(ctx)
	for _, span := range obj.rowSpans(len(rows)) {
		errGroup.Go(func() error {
			for rowIdx := span.start; rowIdx < span.end; rowIdx++ {
				if err := groupCtx.Err(); err != nil {
					return errs.Wrap(err, fmt.Errorf("canceled at row %d", rowIdx))
				}
				outcomes[rowIdx] = obj.computeRow(groupCtx, computeFunc, rows[rowIdx])
			}
			return nil
		})
	}
	if err := errGroup.Wait(); err != nil {
		return nil, err
	}

	return outcomes, nil
}

func (obj *Pool) computeRow(ctx context.Context, computeFunc elements.RowFunc, row elements.Row) (outcome elements.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			obj.logger.Error("row computation panicked", slog.Any("panic", r))
			outcome = elements.NewFailedOutcome(fmt.Sprintf("panic: %v", r))
		}
	}()

	result, err := computeFunc(ctx, row)
	if err != nil {
		return elements.NewFailedOutcome(err.Error())
	}
	return result
}

type rowSpan struct {
	start int
	end   int
}

func (obj *Pool) rowSpans(numRows int) []rowSpan {
	workerCount := obj.workerCount
	if workerCount > numRows {
		workerCount = numRows
	}

	spanSize := numRows / workerCount
	remainder := numRows % workerCount
	spans := make([]rowSpan, 0, workerCount)
	start := 0
	for workerIdx := 0; workerIdx < workerCount; workerIdx++ {
		size := spanSize
		if workerIdx < remainder {
			size++
		}
		spans = append(spans, rowSpan{start: start, end: start + size})
		start += size
	}
	return spans
}

package elements

import (
	"context"
)

// RowFunc computes the outcome for a single row. A returned error marks
// that row failed; it never aborts the rest of the batch.
type RowFunc func(ctx context.Context, row Row) (Outcome, error)

package elements

import "errors"

var (
	ErrComputationInvalid   = errors.New("computation invalid")
	ErrMissingInputColumn   = errors.New("missing input column")
	ErrReservedColumn       = errors.New("reserved column")
	ErrInvalidWorkerCount   = errors.New("invalid worker count")
	ErrNilComputation       = errors.New("nil computation")
	ErrOutcomeCountMismatch = errors.New("outcome count different than row count")
	ErrOutputFieldMissing   = errors.New("output field missing from outcome")
	ErrOutputFieldType      = errors.New("output field has unexpected type")
)

package refhash

import "errors"

var (
	ErrHashMismatch    = errors.New("reference hash mismatch")
	ErrNoReferenceHash = errors.New("no reference hash in file")
)

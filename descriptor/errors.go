package descriptor

import "errors"

var (
	ErrInvalidFingerprintParams = errors.New("fingerprint parameters invalid")
	ErrEmptySecretKey           = errors.New("secret key is empty")
)

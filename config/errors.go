package config

import "errors"

var (
	ErrUnsupportedFileFormat = errors.New("unsupported file format")
	ErrInvalidParameters     = errors.New("parameters failed validation")
	ErrInvalidSecret         = errors.New("secret key failed validation")
)

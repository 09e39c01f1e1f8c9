package gelf

import "errors"

var (
	ErrFieldNotSet      = errors.New("field not set")
	ErrMessageTooLarge  = errors.New("message too large")
	ErrInvalidChunkSize = errors.New("invalid chunk size")
)

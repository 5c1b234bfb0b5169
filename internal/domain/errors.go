package domain

import "errors"

var (
	ErrMalformedKey     = errors.New("malformed private key")
	ErrActivationFailed = errors.New("node activation failed")
)

package npy

import "errors"

var (
	ErrMalformedHeader       = errors.New("malformed npy header")
	ErrMalformedMetadata     = errors.New("malformed npy metadata")
	ErrTruncatedPayload      = errors.New("truncated npy payload")
	ErrUnsupportedDescriptor = errors.New("unsupported npy descriptor")
)

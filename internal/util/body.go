package util

import (
	"fmt"
	"io"
)

// BodyTooLargeError is returned when a response body exceeds the configured limit
type BodyTooLargeError struct {
	Limit int64
}

func (e *BodyTooLargeError) Error() string {
	return fmt.Sprintf("response exceeds %d bytes", e.Limit)
}

// ReadBody reads at most maxBytes from r. A body longer than maxBytes yields
// the first maxBytes bytes together with a *BodyTooLargeError.
func ReadBody(r io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return data[:maxBytes], &BodyTooLargeError{Limit: maxBytes}
	}
	return data, nil
}

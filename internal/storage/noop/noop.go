package noop

import (
	"context"
	"io"

	"bananaledger/internal/port"
)

// Storage discards uploads. It stands in for the archive when no bucket is configured.
type Storage struct{}

// NewStorage creates a discarding ObjectStorage.
func NewStorage() port.ObjectStorage {
	return Storage{}
}

func (Storage) Upload(_ context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	if input.Body != nil {
		if _, err := io.Copy(io.Discard, input.Body); err != nil {
			return nil, err
		}
	}
	return &port.UploadOutput{}, nil
}

package storage

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("not found")
)

// ObjectInfo is one entry of a container listing.
type ObjectInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// ObjectStore is the remote content store, accessed with the service's own
// credential.
type ObjectStore interface {
	List(ctx context.Context) ([]ObjectInfo, error)
	Exists(ctx context.Context, name string) (bool, error)
	// Delete returns ErrNotFound when the object is already gone.
	Delete(ctx context.Context, name string) error
}

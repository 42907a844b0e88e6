package storage

import (
	"context"
)

// ObjectStore provides an interface for blob storage operations.
// This interface enables mocking and testing of storage functionality.
type ObjectStore interface {
	// List returns the names of objects under the given prefix, in
	// lexical order.
	List(ctx context.Context, bucket, prefix string) ([]string, error)

	// Download fetches the full contents of one object.
	Download(ctx context.Context, bucket, object string) ([]byte, error)
}

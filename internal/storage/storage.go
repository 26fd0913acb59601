// Package storage defines where a ledger's persisted blob lives.
//
// A ledger is persisted as one opaque value (the JSON array of its
// transactions) under one key. Backends only need whole-value get, put and
// delete; the ledger store never performs partial updates.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("blob not found")

// BlobStore persists one value per key.
type BlobStore interface {
	// Get returns the stored value or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

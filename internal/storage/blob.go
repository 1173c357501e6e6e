// Package storage holds rendered certificate documents. The fs driver is the
// default; a bucket-backed driver can slot in behind the same interface.
package storage

import "io"

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
}

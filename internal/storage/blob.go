// Package storage retains the raw uploaded text a quiz was created from,
// keyed by quiz id. The sourceHash on a record is only a fingerprint;
// keeping the original bytes gives it something to be compared against.
package storage

import "io"

type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	Delete(key string) error
}

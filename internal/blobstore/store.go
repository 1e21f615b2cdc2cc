// Package blobstore persists named blobs for the PRD pipeline.
package blobstore

// Store is the blob store collaborator. Read reports ok=false when the key
// has never been written. Implementations make no transactional guarantee
// across a read-modify-write cycle; callers own that trade-off.
type Store interface {
	Read(key string) (data []byte, ok bool, err error)
	Write(key string, data []byte, contentType string) error
	Close() error
}

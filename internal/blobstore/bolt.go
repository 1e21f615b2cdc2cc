package blobstore

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/explohq/chatprd/internal/metrics"
)

var (
	blobsBucket = []byte("blobs")
	metaBucket  = []byte("blob_meta")
)

// Bolt is a bbolt-backed Store. Blob bytes live in one bucket, content types
// in a sibling bucket under the same key.
type Bolt struct {
	db      *bolt.DB
	metrics *metrics.Metrics
}

func NewBolt(path string, m *metrics.Metrics) (*Bolt, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(blobsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(metaBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating blob buckets: %w", err)
	}

	return &Bolt{db: db, metrics: m}, nil
}

func (s *Bolt) Read(key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(blobsBucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		data = make([]byte, len(v))
		copy(data, v)
		return nil
	})
	if err != nil {
		s.metrics.RecordStorageOp("read", "error")
		return nil, false, err
	}
	s.metrics.RecordStorageOp("read", "ok")
	return data, data != nil, nil
}

func (s *Bolt) Write(key string, data []byte, contentType string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(blobsBucket).Put([]byte(key), data); err != nil {
			return err
		}
		return tx.Bucket(metaBucket).Put([]byte(key), []byte(contentType))
	})
	if err != nil {
		s.metrics.RecordStorageOp("write", "error")
		return err
	}
	s.metrics.RecordStorageOp("write", "ok")
	return nil
}

// ContentType returns the content type recorded for key, if any.
func (s *Bolt) ContentType(key string) (string, bool, error) {
	var ct []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(metaBucket).Get([]byte(key))
		if v == nil {
			return nil
		}
		ct = make([]byte, len(v))
		copy(ct, v)
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return string(ct), ct != nil, nil
}

func (s *Bolt) Close() error {
	return s.db.Close()
}

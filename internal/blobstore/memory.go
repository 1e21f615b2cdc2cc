package blobstore

import "sync"

// Memory is an in-process Store used by tests and local development.
type Memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	types map[string]string

	// FailReads and FailWrites force the next operations to fail with Err.
	FailReads  bool
	FailWrites bool
	Err        error
}

func NewMemory() *Memory {
	return &Memory{
		blobs: make(map[string][]byte),
		types: make(map[string]string),
	}
}

func (m *Memory) Read(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailReads {
		return nil, false, m.Err
	}
	data, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (m *Memory) Write(key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWrites {
		return m.Err
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	m.blobs[key] = stored
	m.types[key] = contentType
	return nil
}

func (m *Memory) ContentType(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ct, ok := m.types[key]
	return ct, ok
}

func (m *Memory) Close() error { return nil }

package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
)

// Memory keeps objects in process. Used when no object store is configured and in tests.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	base    string
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemory(publicBase string) *Memory {
	return &Memory{objects: map[string]memoryObject{}, base: strings.TrimRight(publicBase, "/")}
}

func (m *Memory) Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (ObjectInfo, error) {
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return ObjectInfo{}, err
	}
	m.mu.Lock()
	m.objects[key] = memoryObject{data: buf.Bytes(), contentType: opt.ContentType}
	m.mu.Unlock()
	return ObjectInfo{Key: key, Size: n, ContentType: opt.ContentType, URL: m.URL(key)}, nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return ErrNotFound
	}
	delete(m.objects, key)
	return nil
}

func (m *Memory) URL(key string) string {
	return m.base + "/" + key
}

// Object returns a stored object's bytes and content type.
func (m *Memory) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[key]
	return o.data, o.contentType, ok
}

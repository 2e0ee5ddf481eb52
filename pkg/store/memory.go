package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process Gateway. Buckets must be created before objects are
// written to them.
type Memory struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte
	regions map[string]string

	// Fail, when set, is consulted before every PutObject; a non-nil return
	// makes the write fail with that error.
	Fail func(bucket, key string) error
}

// NewMemory returns an empty in-memory gateway.
func NewMemory() *Memory {
	return &Memory{
		buckets: make(map[string]map[string][]byte),
		regions: make(map[string]string),
	}
}

func (m *Memory) BucketExists(_ context.Context, bucket string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.buckets[bucket]
	return ok, nil
}

func (m *Memory) CreateBucket(_ context.Context, bucket, region string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; ok {
		return nil
	}
	m.buckets[bucket] = make(map[string][]byte)
	m.regions[bucket] = region
	return nil
}

func (m *Memory) PutObject(_ context.Context, bucket, key string, body []byte) error {
	if m.Fail != nil {
		if err := m.Fail(bucket, key); err != nil {
			return err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	objects, ok := m.buckets[bucket]
	if !ok {
		return fmt.Errorf("bucket %s does not exist", bucket)
	}
	objects[key] = append([]byte(nil), body...)
	return nil
}

// GetObject returns a copy of the object stored under key.
func (m *Memory) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.buckets[bucket][key]
	if !ok {
		return nil, fmt.Errorf("object %s not found in bucket %s", key, bucket)
	}
	return append([]byte(nil), data...), nil
}

// Keys lists the keys stored in bucket, sorted.
func (m *Memory) Keys(bucket string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.buckets[bucket]))
	for k := range m.buckets[bucket] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Region returns the region bucket was created in.
func (m *Memory) Region(bucket string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.regions[bucket]
}

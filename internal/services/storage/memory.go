package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/phambaophuc/image-derivative/pkg/utils"
)

type memoryObject struct {
	data []byte
	meta ObjectMeta
}

// MemoryGateway keeps objects in process memory. It backs local runs and
// tests; contents are lost on restart.
type MemoryGateway struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{objects: make(map[string]memoryObject)}
}

func memoryKey(bucket, key string) string {
	return bucket + "/" + key
}

func (m *MemoryGateway) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[memoryKey(bucket, key)]
	if !ok {
		return nil, fmt.Errorf("get object %s/%s: %w", bucket, key, ErrNotFound)
	}
	return append([]byte(nil), obj.data...), nil
}

func (m *MemoryGateway) Put(ctx context.Context, bucket, key string, data []byte, opts PutOptions) (string, error) {
	meta := ObjectMeta{
		ContentType:      utils.ContentTypeFor(key, data, opts.ContentType),
		ContentLength:    int64(len(data)),
		RedirectLocation: opts.RedirectLocation,
		Metadata:         copyMetadata(opts.Metadata),
	}

	m.mu.Lock()
	m.objects[memoryKey(bucket, key)] = memoryObject{
		data: append([]byte(nil), data...),
		meta: meta,
	}
	m.mu.Unlock()

	return key, nil
}

func (m *MemoryGateway) Head(ctx context.Context, bucket, key string) (*ObjectMeta, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[memoryKey(bucket, key)]
	if !ok {
		return nil, fmt.Errorf("head object %s/%s: %w", bucket, key, ErrNotFound)
	}

	meta := obj.meta
	meta.Metadata = copyMetadata(obj.meta.Metadata)
	return &meta, nil
}

func (m *MemoryGateway) CopyWithMetadataReplace(ctx context.Context, bucket, key string, metadata map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := memoryKey(bucket, key)
	obj, ok := m.objects[k]
	if !ok {
		return fmt.Errorf("copy object %s/%s: %w", bucket, key, ErrNotFound)
	}

	obj.meta.Metadata = MergeMetadata(obj.meta.Metadata, metadata)
	m.objects[k] = obj
	return nil
}

func (m *MemoryGateway) HealthCheck(ctx context.Context) map[string]string {
	return map[string]string{"memory": "healthy"}
}

func copyMetadata(src map[string]string) map[string]string {
	if src == nil {
		return nil
	}
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

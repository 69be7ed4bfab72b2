package storage

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNotFound    = errors.New("object not found")
	ErrUnsupported = errors.New("operation not supported by storage driver")
)

// Gateway is the object store used by the derivative pipeline. Every
// operation is idempotent; retries are left to the caller.
type Gateway interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Put(ctx context.Context, bucket, key string, data []byte, opts PutOptions) (string, error)
	Head(ctx context.Context, bucket, key string) (*ObjectMeta, error)
	CopyWithMetadataReplace(ctx context.Context, bucket, key string, metadata map[string]string) error
}

// HealthChecker is implemented by gateways that can report connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) map[string]string
}

type PutOptions struct {
	// ContentType overrides extension based inference.
	ContentType string
	// RedirectLocation marks the object as a published derivative.
	RedirectLocation string
	Metadata         map[string]string
}

type ObjectMeta struct {
	ContentType      string
	ContentLength    int64
	RedirectLocation string
	Metadata         map[string]string
}

// MetadataValue looks a metadata key up case-insensitively; S3 returns
// user metadata keys in canonical header form.
func (m *ObjectMeta) MetadataValue(key string) string {
	if m == nil {
		return ""
	}
	if v, ok := m.Metadata[key]; ok {
		return v
	}
	for k, v := range m.Metadata {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// MergeMetadata returns existing overlaid with updates. Keys are compared
// case-insensitively so canonicalized keys are replaced, not duplicated.
func MergeMetadata(existing, updates map[string]string) map[string]string {
	merged := make(map[string]string, len(existing)+len(updates))
	for k, v := range existing {
		merged[strings.ToLower(k)] = v
	}
	for k, v := range updates {
		merged[strings.ToLower(k)] = v
	}
	return merged
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/phambaophuc/image-derivative/pkg/utils"
	storage_go "github.com/supabase-community/storage-go"
)

// SupabaseGateway serves the pipeline from Supabase Storage. Supabase has
// no user metadata on objects, so CopyWithMetadataReplace is unsupported.
type SupabaseGateway struct {
	sbClient *storage_go.Client
	bucket   string
	pageSize int
}

const defaultListPageSize = 1000

// NewSupabaseGateway creates the gateway; bucket is only used for health checks.
func NewSupabaseGateway(url, key, bucket string) *SupabaseGateway {
	return &SupabaseGateway{
		sbClient: storage_go.NewClient(url+"/storage/v1", key, nil),
		bucket:   bucket,
		pageSize: defaultListPageSize,
	}
}

func (s *SupabaseGateway) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	data, err := s.sbClient.DownloadFile(bucket, key)
	if err != nil {
		return nil, fmt.Errorf("download %s/%s: %w", bucket, key, mapSupabaseError(err))
	}
	return data, nil
}

func (s *SupabaseGateway) Put(ctx context.Context, bucket, key string, data []byte, opts PutOptions) (string, error) {
	contentType := utils.ContentTypeFor(key, data, opts.ContentType)
	upsert := true

	_, err := s.sbClient.UploadFile(bucket, key, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to supabase: %w", err)
	}

	return key, nil
}

// Head pages through the parent folder and matches the object by name. Any
// stored object is published through its public URL, which doubles as the
// redirect marker.
func (s *SupabaseGateway) Head(ctx context.Context, bucket, key string) (*ObjectMeta, error) {
	dir, name := path.Split(key)
	prefix := strings.TrimSuffix(dir, "/")

	for offset := 0; ; offset += s.pageSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		files, err := s.sbClient.ListFiles(bucket, prefix, storage_go.FileSearchOptions{
			Limit:  s.pageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, fmt.Errorf("list %s/%s: %w", bucket, dir, err)
		}

		for _, f := range files {
			if f.Name != name {
				continue
			}
			return &ObjectMeta{
				ContentType:      utils.ContentTypeFor(key, nil, ""),
				RedirectLocation: s.sbClient.GetPublicUrl(bucket, key).SignedURL,
			}, nil
		}

		if len(files) < s.pageSize {
			break
		}
	}

	return nil, fmt.Errorf("head %s/%s: %w", bucket, key, ErrNotFound)
}

func (s *SupabaseGateway) CopyWithMetadataReplace(ctx context.Context, bucket, key string, metadata map[string]string) error {
	return fmt.Errorf("copy %s/%s: %w", bucket, key, ErrUnsupported)
}

// HealthCheck checks Supabase
func (s *SupabaseGateway) HealthCheck(ctx context.Context) map[string]string {
	status := make(map[string]string)

	if _, err := s.sbClient.ListFiles(s.bucket, "", storage_go.FileSearchOptions{}); err != nil {
		status["supabase"] = "unhealthy: " + err.Error()
	} else {
		status["supabase"] = "healthy"
	}

	return status
}

func mapSupabaseError(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "not found") {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

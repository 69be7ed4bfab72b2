package derivative

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/phambaophuc/image-derivative/internal/models"
	"github.com/phambaophuc/image-derivative/internal/services/storage"
	"github.com/phambaophuc/image-derivative/pkg/utils"
	"go.uber.org/zap"
)

const defaultWarmWorkers = 4

// WarmResult reports one size produced by Warm.
type WarmResult struct {
	Size       string
	Derivative string
	URL        string
	Err        error
}

// Warm pre-generates resize derivatives of key for every size. It is an
// operator path: no token is checked. The source is fetched once and the
// sizes are processed by a bounded worker pool.
func (s *Service) Warm(ctx context.Context, key string, sizes []string, workers int) ([]WarmResult, error) {
	if key == "" {
		return nil, fmt.Errorf("warm: empty key")
	}
	if len(sizes) == 0 {
		return []WarmResult{}, nil
	}

	data, err := s.origin.Get(ctx, s.opts.OriginBucket, key)
	if err != nil {
		return nil, fmt.Errorf("warm %s: %w", key, err)
	}

	if workers <= 0 {
		workers = defaultWarmWorkers
	}
	if len(sizes) < workers {
		workers = len(sizes)
	}

	results := make([]WarmResult, len(sizes))
	jobs := make(chan int, len(sizes))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.warmOne(ctx, key, sizes[i], data)
			}
		}()
	}

	for i := range sizes {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	var failed []string
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", r.Size, r.Err))
		}
	}

	if len(failed) > 0 {
		return results, fmt.Errorf("failed to warm %d sizes: %s", len(failed), strings.Join(failed, "; "))
	}

	return results, nil
}

func (s *Service) warmOne(ctx context.Context, key, size string, data []byte) WarmResult {
	derivativeKey := models.DerivativeKey("", size, key)
	result := WarmResult{Size: size, Derivative: derivativeKey}

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	spec, err := s.parser.Parse(size)
	if err != nil {
		result.Err = err
		return result
	}

	out, err := s.engine.Resize(data, spec)
	if err != nil {
		result.Err = err
		return result
	}

	cdnURL := utils.JoinURL(s.opts.DestCDNURL, derivativeKey)
	if _, err := s.dest.Put(ctx, s.opts.DestBucket, derivativeKey, out.Data, storage.PutOptions{
		ContentType:      out.ContentType,
		RedirectLocation: cdnURL,
	}); err != nil {
		result.Err = err
		return result
	}

	s.logger.Info("Derivative warmed",
		zap.String("derivative", derivativeKey),
		zap.Int("width", out.Width),
		zap.Int("height", out.Height))

	s.notify(ctx, &models.DerivativeEvent{
		Variant:     models.VariantResize,
		Key:         key,
		Size:        size,
		Derivative:  derivativeKey,
		URL:         cdnURL,
		ContentType: out.ContentType,
		Width:       out.Width,
		Height:      out.Height,
		FileSize:    int64(len(out.Data)),
	})

	result.URL = cdnURL
	return result
}

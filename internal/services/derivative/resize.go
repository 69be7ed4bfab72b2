package derivative

import (
	"context"

	"github.com/phambaophuc/image-derivative/internal/models"
	"github.com/phambaophuc/image-derivative/internal/services/storage"
	"github.com/phambaophuc/image-derivative/pkg/utils"
	"go.uber.org/zap"
)

func (s *Service) handleResize(ctx context.Context, req Request) (*Response, *Error) {
	derivativeKey, authErr := s.authorize(ctx, "", req)
	if authErr != nil {
		return nil, authErr
	}

	// No size means the original is served as-is.
	if req.Size == "" {
		return redirectResponse(utils.JoinURL(s.opts.StorageURL, req.Key)), nil
	}

	spec, err := s.parser.Parse(req.Size)
	if err != nil {
		return nil, newError(KindClient, "Invalid file.", err)
	}

	cdnURL := utils.JoinURL(s.opts.DestCDNURL, derivativeKey)

	if s.cacheCheckEnabled(req, s.opts.ResizeCacheCheck) {
		meta, err := s.dest.Head(ctx, s.opts.DestBucket, derivativeKey)
		if err == nil && meta.RedirectLocation != "" {
			s.logger.Debug("Derivative already exists", zap.String("derivative", derivativeKey))
			return redirectResponse(cdnURL), nil
		}
		if err != nil {
			s.logger.Debug("Derivative cache check missed",
				zap.String("derivative", derivativeKey),
				zap.Error(err))
		}
	}

	data, err := s.origin.Get(ctx, s.opts.OriginBucket, req.Key)
	if err != nil {
		return nil, newError(KindUpstreamFetch, "Get object failed", err)
	}
	s.logger.Debug("Get object success",
		zap.String("key", req.Key),
		zap.Int("bytes", len(data)))

	out, err := s.engine.Resize(data, spec)
	if err != nil {
		return nil, newError(KindTransform, "Resize image failed", err)
	}

	if _, err := s.dest.Put(ctx, s.opts.DestBucket, derivativeKey, out.Data, storage.PutOptions{
		ContentType:      out.ContentType,
		RedirectLocation: cdnURL,
	}); err != nil {
		return nil, newError(KindStorageWrite, err.Error(), err)
	}

	s.logger.Info("Derivative stored",
		zap.String("derivative", derivativeKey),
		zap.Int("width", out.Width),
		zap.Int("height", out.Height),
		zap.Int("bytes", len(out.Data)))

	s.notify(ctx, &models.DerivativeEvent{
		Variant:     models.VariantResize,
		Key:         req.Key,
		Size:        req.Size,
		Derivative:  derivativeKey,
		URL:         cdnURL,
		ContentType: out.ContentType,
		Width:       out.Width,
		Height:      out.Height,
		FileSize:    int64(len(out.Data)),
	})

	return redirectResponse(cdnURL), nil
}

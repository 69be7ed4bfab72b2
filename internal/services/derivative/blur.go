package derivative

import (
	"context"
	"net/http"
	"strconv"

	"github.com/phambaophuc/image-derivative/internal/models"
	"go.uber.org/zap"
)

func (s *Service) handleBlur(ctx context.Context, req Request) (*Response, *Error) {
	derivativeKey, authErr := s.authorize(ctx, models.BlurNamespace, req)
	if authErr != nil {
		return nil, authErr
	}

	if req.Size == "" {
		return nil, newError(KindClient, "Invalid size.", nil).withStatus(http.StatusForbidden)
	}

	spec, err := s.parser.Parse(req.Size)
	if err != nil {
		return nil, newError(KindClient, "Invalid size.", err)
	}

	if s.cacheCheckEnabled(req, s.opts.BlurCacheCheck) {
		if result := s.cachedBlur(ctx, derivativeKey, req.Key, req.Size); result != nil {
			return jsonResponse(http.StatusOK, result), nil
		}
	}

	data, err := s.origin.Get(ctx, s.opts.OriginBucket, req.Key)
	if err != nil {
		return nil, newError(KindUpstreamFetch, "Get object failed", err)
	}

	blur, err := s.engine.BlurEncode(data, spec)
	if err != nil {
		return nil, newError(KindTransform, "Transform image failed", err)
	}

	result := &models.BlurhashResult{
		Blurhash:            blur.Hash,
		BlurhashData:        blur.PreviewDataURI,
		BlurhashAvg:         blur.AverageColor,
		BlurhashThumbnail:   req.Size,
		BlurhashImageWidth:  strconv.Itoa(blur.Width),
		BlurhashImageHeight: strconv.Itoa(blur.Height),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, derivativeKey, result); err != nil {
			s.logger.Warn("Failed to cache blurhash",
				zap.String("derivative", derivativeKey),
				zap.Error(err))
		}
	}

	if s.opts.BlurPersistMetadata {
		if err := s.origin.CopyWithMetadataReplace(ctx, s.opts.OriginBucket, req.Key, result.Metadata()); err != nil {
			s.logger.Warn("Failed to persist blurhash metadata",
				zap.String("key", req.Key),
				zap.Error(err))
		}
	}

	s.logger.Info("Blurhash encoded",
		zap.String("derivative", derivativeKey),
		zap.String("blurhash", blur.Hash))

	s.notify(ctx, &models.DerivativeEvent{
		Variant:    models.VariantBlur,
		Key:        req.Key,
		Size:       req.Size,
		Derivative: derivativeKey,
		Blurhash:   blur.Hash,
		Width:      blur.Width,
		Height:     blur.Height,
	})

	return jsonResponse(http.StatusOK, result), nil
}

// cachedBlur looks for a previous result in the result cache, then in the
// origin object's metadata. Lookup failures count as misses.
func (s *Service) cachedBlur(ctx context.Context, derivativeKey, key, size string) *models.BlurhashResult {
	if s.cache != nil {
		result, err := s.cache.Get(ctx, derivativeKey)
		if err != nil {
			s.logger.Debug("Blurhash cache lookup failed", zap.Error(err))
		} else if result != nil && result.Complete() {
			return result
		}
	}

	meta, err := s.origin.Head(ctx, s.opts.OriginBucket, key)
	if err != nil {
		s.logger.Debug("Blurhash metadata lookup failed", zap.Error(err))
		return nil
	}

	result := &models.BlurhashResult{
		Blurhash:            meta.MetadataValue("blurhash"),
		BlurhashData:        meta.MetadataValue("blurhash_data"),
		BlurhashAvg:         meta.MetadataValue("blurhash_avg"),
		BlurhashThumbnail:   meta.MetadataValue("blurhash_thumbnail"),
		BlurhashImageWidth:  meta.MetadataValue("blurhash_image_width"),
		BlurhashImageHeight: meta.MetadataValue("blurhash_image_height"),
	}
	// Metadata holds a single result; it only answers for the size it was computed at.
	if !result.Complete() || result.BlurhashThumbnail != size {
		return nil
	}
	return result
}

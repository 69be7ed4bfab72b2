package derivative

import (
	"context"
	"fmt"
	"net/http"

	"github.com/phambaophuc/image-derivative/internal/models"
	"github.com/phambaophuc/image-derivative/internal/services/cache"
	"github.com/phambaophuc/image-derivative/internal/services/processor"
	"github.com/phambaophuc/image-derivative/internal/services/sizespec"
	"github.com/phambaophuc/image-derivative/internal/services/storage"
	"github.com/phambaophuc/image-derivative/internal/services/token"
	"go.uber.org/zap"
)

type Variant string

const (
	VariantResize Variant = models.VariantResize
	VariantBlur   Variant = models.VariantBlur
)

// ParseVariant maps a configured name to a Variant.
func ParseVariant(name string) (Variant, error) {
	switch Variant(name) {
	case VariantResize, VariantBlur:
		return Variant(name), nil
	}
	return "", fmt.Errorf("unknown derivative variant %q", name)
}

// Request carries the query parameters of one derivative request.
type Request struct {
	Token       string
	Key         string
	Size        string
	NoCache     bool
	CheckExists bool
}

// Notifier receives an event for every derivative produced.
type Notifier interface {
	PublishEvent(ctx context.Context, event *models.DerivativeEvent) error
}

type Options struct {
	OriginBucket string
	DestBucket   string
	// StorageURL serves untransformed originals.
	StorageURL string
	// DestCDNURL serves the destination bucket.
	DestCDNURL string

	ResizeCacheCheck    bool
	BlurCacheCheck      bool
	BlurPersistMetadata bool
}

type Dependencies struct {
	Origin    storage.Gateway
	Dest      storage.Gateway
	Parser    *sizespec.Parser
	Validator *token.Validator
	Engine    *processor.Engine

	// Optional.
	Cache    cache.BlurCache
	Notifier Notifier
}

// Service runs the derivative pipeline. It keeps no per-request state and
// may serve concurrent requests.
type Service struct {
	opts      Options
	origin    storage.Gateway
	dest      storage.Gateway
	parser    *sizespec.Parser
	validator *token.Validator
	engine    *processor.Engine
	cache     cache.BlurCache
	notifier  Notifier
	logger    *zap.Logger
}

func NewService(opts Options, deps Dependencies, logger *zap.Logger) *Service {
	return &Service{
		opts:      opts,
		origin:    deps.Origin,
		dest:      deps.Dest,
		parser:    deps.Parser,
		validator: deps.Validator,
		engine:    deps.Engine,
		cache:     deps.Cache,
		notifier:  deps.Notifier,
		logger:    logger,
	}
}

// Handle runs one request to completion and always returns a response.
// The first failing step decides the response.
func (s *Service) Handle(ctx context.Context, variant Variant, req Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Derivative pipeline panic",
				zap.String("variant", string(variant)),
				zap.String("key", req.Key),
				zap.Any("panic", r))
			resp = textResponse(http.StatusInternalServerError, fmt.Sprint(r))
		}
	}()

	var err *Error
	switch variant {
	case VariantResize:
		resp, err = s.handleResize(ctx, req)
	case VariantBlur:
		resp, err = s.handleBlur(ctx, req)
	default:
		err = newError(KindUnexpected, fmt.Sprintf("unknown derivative variant %q", variant), nil)
	}

	if err != nil {
		s.logger.Info("Derivative request rejected",
			zap.String("variant", string(variant)),
			zap.String("key", req.Key),
			zap.String("size", req.Size),
			zap.Int("status", err.Status),
			zap.Error(err))
		return errorResponse(err)
	}
	return resp
}

// authorize runs the key and token checks shared by both variants and
// returns the derivative key.
func (s *Service) authorize(ctx context.Context, namespace string, req Request) (string, *Error) {
	if req.Key == "" {
		return "", newError(KindClient, "Invalid key.", nil).withStatus(http.StatusForbidden)
	}

	derivativeKey := models.DerivativeKey(namespace, req.Size, req.Key)
	if !s.validator.Verify(ctx, req.Token, derivativeKey) {
		return "", newError(KindAuthorization, "Invalid token.", nil)
	}

	return derivativeKey, nil
}

func (s *Service) cacheCheckEnabled(req Request, policy bool) bool {
	return policy && req.CheckExists && !req.NoCache
}

func (s *Service) notify(ctx context.Context, event *models.DerivativeEvent) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.PublishEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish derivative event",
			zap.String("derivative", event.Derivative),
			zap.Error(err))
	}
}

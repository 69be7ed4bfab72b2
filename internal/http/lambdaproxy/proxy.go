package lambdaproxy

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"github.com/phambaophuc/image-derivative/internal/services/derivative"
	"go.uber.org/zap"
)

// Handler adapts API Gateway proxy events to one derivative variant.
type Handler struct {
	service *derivative.Service
	variant derivative.Variant
	logger  *zap.Logger
}

func NewHandler(service *derivative.Service, variant derivative.Variant, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		variant: variant,
		logger:  logger,
	}
}

// Handle never returns an error: every failure is a proxy response.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	h.logger.Debug("Lambda invocation",
		zap.String("variant", string(h.variant)),
		zap.String("request_id", event.RequestContext.RequestID),
		zap.String("path", event.Path))

	resp := h.service.Handle(ctx, h.variant, RequestFromEvent(event))
	return ResponseToProxy(resp), nil
}

func RequestFromEvent(event events.APIGatewayProxyRequest) derivative.Request {
	q := event.QueryStringParameters
	return derivative.Request{
		Token:       q["token"],
		Key:         q["key"],
		Size:        q["size"],
		NoCache:     derivative.ParseFlag(q["no_cache"]),
		CheckExists: derivative.ParseFlag(q["check_exists"]),
	}
}

func ResponseToProxy(resp *derivative.Response) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       string(resp.Body),
	}
}

package main

import (
	"context"
	"log"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/phambaophuc/image-derivative/internal/app"
	"github.com/phambaophuc/image-derivative/internal/config"
	"github.com/phambaophuc/image-derivative/internal/http/lambdaproxy"
	"github.com/phambaophuc/image-derivative/internal/services/derivative"
	"go.uber.org/zap"
)

// One function per variant; DERIVATIVE_VARIANT selects it.
func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	variant, err := derivative.ParseVariant(cfg.Derivative.Variant)
	if err != nil {
		logger.Fatal("Invalid derivative variant", zap.Error(err))
	}

	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer a.Close()

	handler := lambdaproxy.NewHandler(a.Service, variant, logger)

	logger.Info("Starting lambda handler", zap.String("variant", string(variant)))
	awslambda.Start(handler.Handle)
}

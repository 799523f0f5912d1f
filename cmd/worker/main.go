package main

import (
	"context"
	"os"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/royal-pizza/internal/bootstrap"
	"github.com/imrishuroy/royal-pizza/internal/config"
	"github.com/imrishuroy/royal-pizza/internal/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		l := logger.New("royal-pizza-worker", "info")
		l.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.Service+"-worker", cfg.LogLevel)

	if err := run(context.Background(), cfg, log, os.Getenv("LOCAL_SQS_BODY")); err != nil {
		log.Fatal().Err(err).Msg("worker stopped")
	}
}

// run wires the processor and either handles localBody once (RUN_LOCAL) or
// hands control to the Lambda runtime. The app is closed before returning.
func run(ctx context.Context, cfg config.Config, log zerolog.Logger, localBody string) error {
	app, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		return errors.Wrap(err, "build app")
	}
	defer app.Close(ctx)

	p := NewProcessor(app.Service, log)

	// If RUN_LOCAL=true, process a single simulated SQS message and exit.
	if cfg.RunLocal {
		if localBody == "" {
			return errors.New("LOCAL_SQS_BODY is required when RUN_LOCAL=true")
		}
		resp, _ := p.Handle(ctx, lambdaevents.SQSEvent{
			Records: []lambdaevents.SQSMessage{{MessageId: "local-1", Body: localBody}},
		})
		if len(resp.BatchItemFailures) > 0 {
			return errors.New("local message failed")
		}
		return nil
	}

	lambda.Start(p.Handle)
	return nil
}

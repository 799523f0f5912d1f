package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/royal-pizza/internal/bootstrap"
	"github.com/imrishuroy/royal-pizza/internal/config"
	"github.com/imrishuroy/royal-pizza/internal/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		l := logger.New("royal-pizza", "info")
		l.Fatal().Err(err).Msg("load config")
	}
	log := logger.New(cfg.Service, cfg.LogLevel)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	if err := run(context.Background(), cfg, log, stop); err != nil {
		log.Fatal().Err(err).Msg("api stopped")
	}
}

// run wires the app and serves it until stop fires (RUN_LOCAL) or hands it to
// the Lambda runtime. The app is closed before returning.
func run(ctx context.Context, cfg config.Config, log zerolog.Logger, stop <-chan os.Signal) error {
	app, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		return errors.Wrap(err, "init app")
	}
	defer app.Close(ctx)

	if _, err := app.Migrate(ctx); err != nil {
		return errors.Wrap(err, "migrate")
	}
	if cfg.Storage.Seed {
		if _, err := app.Seed(ctx, false); err != nil {
			return err
		}
	}

	if !cfg.RunLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	r := app.Router()

	// if RUN_LOCAL is set, run a local HTTP server for development.
	if cfg.RunLocal {
		return serve(ctx, &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}, log, stop)
	}

	adapter := ginadapter.New(r)
	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
	return nil
}

func serve(ctx context.Context, srv *http.Server, log zerolog.Logger, stop <-chan os.Signal) error {
	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("running local server")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return errors.Wrap(err, "run local server")
	case <-stop:
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}

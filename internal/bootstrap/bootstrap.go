// Package bootstrap builds the ordering service and its collaborators from
// configuration. The API, the worker and pizzactl share it.
package bootstrap

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/royal-pizza/internal/aws"
	"github.com/imrishuroy/royal-pizza/internal/catalog"
	"github.com/imrishuroy/royal-pizza/internal/config"
	"github.com/imrishuroy/royal-pizza/internal/events"
	"github.com/imrishuroy/royal-pizza/internal/handlers"
	"github.com/imrishuroy/royal-pizza/internal/idempotency"
	"github.com/imrishuroy/royal-pizza/internal/metrics"
	"github.com/imrishuroy/royal-pizza/internal/numbering"
	"github.com/imrishuroy/royal-pizza/internal/ordering"
	"github.com/imrishuroy/royal-pizza/internal/orders"
	"github.com/imrishuroy/royal-pizza/internal/postgres"
	"github.com/imrishuroy/royal-pizza/internal/tracing"
	"github.com/imrishuroy/royal-pizza/internal/validation"
)

// OrderStore is what a storage backend provides for orders.
type OrderStore interface {
	ordering.Repository
	numbering.Counter
	handlers.Pinger
}

// CatalogStore is what a storage backend provides for the menu.
type CatalogStore interface {
	handlers.Menu
	catalog.Inserter
	handlers.Pinger
}

// App holds the wired components. Close releases everything Build opened.
type App struct {
	Config      config.Config
	Logger      zerolog.Logger
	Service     *ordering.Service
	Orders      OrderStore
	Catalog     CatalogStore
	Idempotency handlers.IdempotencyStore
	Prometheus  *metrics.Prometheus
	Pool        *pgxpool.Pool

	aws     *aws.AWSClients
	closers []func(context.Context) error
}

// Build wires storage, numbering, events, metrics and tracing per cfg.
func Build(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: log}
	if err := app.build(ctx); err != nil {
		_ = app.Close(context.Background())
		return nil, err
	}
	return app, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config

	shutdown, err := tracing.Setup(cfg.Service, cfg.Tracing.JaegerEndpoint)
	if err != nil {
		return errors.Wrap(err, "init tracing")
	}
	a.closers = append(a.closers, shutdown)

	if err := a.buildStorage(ctx); err != nil {
		return err
	}

	allocator, err := a.buildAllocator(ctx)
	if err != nil {
		return err
	}
	publisher, err := a.buildPublisher(ctx)
	if err != nil {
		return err
	}
	recorder, err := a.buildMetrics(ctx)
	if err != nil {
		return err
	}

	a.Service = ordering.NewService(ordering.Deps{
		Catalog:   a.Catalog,
		Orders:    a.Orders,
		Allocator: allocator,
		Validator: validation.New(cfg.Ordering.PickupLeadTime),
		Publisher: publisher,
		Metrics:   recorder,
		Logger:    a.Logger,
	})
	return nil
}

func (a *App) awsClients(ctx context.Context) (*aws.AWSClients, error) {
	if a.aws != nil {
		return a.aws, nil
	}
	clients, err := aws.NewAWSClients(ctx, a.Config.AWS.Region, a.Config.AWS.Endpoint)
	if err != nil {
		return nil, err
	}
	a.aws = clients
	return clients, nil
}

func (a *App) buildStorage(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := postgres.Connect(ctx, cfg.Postgres, a.Logger)
		if err != nil {
			return err
		}
		a.Pool = pool
		a.closers = append(a.closers, func(context.Context) error { pool.Close(); return nil })
		a.Orders = postgres.NewOrderStore(pool)
		a.Catalog = postgres.NewCatalogStore(pool)
		a.Idempotency = postgres.NewIdempotencyStore(pool, cfg.AWS.IdempotencyTTL)
	default:
		clients, err := a.awsClients(ctx)
		if err != nil {
			return err
		}
		a.Orders = orders.NewStore(clients.DynamoDB, cfg.AWS.OrdersTable)
		a.Catalog = catalog.NewStore(clients.DynamoDB, cfg.AWS.PizzasTable)
		if cfg.AWS.IdempotencyTable != "" {
			a.Idempotency = idempotency.NewStore(clients.DynamoDB, cfg.AWS.IdempotencyTable, cfg.AWS.IdempotencyTTL)
		}
	}
	a.Logger.Info().Str("backend", cfg.Storage.Backend).Msg("storage ready")
	return nil
}

func (a *App) buildAllocator(ctx context.Context) (numbering.Allocator, error) {
	cfg := a.Config
	switch cfg.Ordering.SequenceStrategy {
	case config.SequenceCounter:
		clients, err := a.awsClients(ctx)
		if err != nil {
			return nil, err
		}
		return numbering.NewDynamoAllocator(clients.DynamoDB, cfg.AWS.CountersTable, a.Orders), nil
	case config.SequenceRedis:
		rdb := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.Redis.Addr},
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, errors.Wrapf(err, "connect to redis at %s", cfg.Redis.Addr)
		}
		return numbering.NewRedisAllocator(rdb, a.Orders), nil
	default:
		return numbering.NewCountAllocator(a.Orders), nil
	}
}

func (a *App) buildPublisher(ctx context.Context) (events.Publisher, error) {
	cfg := a.Config
	switch cfg.Events.Backend {
	case config.EventsSQS:
		clients, err := a.awsClients(ctx)
		if err != nil {
			return nil, err
		}
		return events.NewSQSPublisher(clients.SQS, cfg.AWS.QueueURL), nil
	case config.EventsKafka:
		p := events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic))
		a.closers = append(a.closers, func(context.Context) error { return p.Close() })
		return p, nil
	default:
		return events.Nop{}, nil
	}
}

func (a *App) buildMetrics(ctx context.Context) (metrics.Recorder, error) {
	cfg := a.Config
	switch cfg.Metrics.Backend {
	case config.MetricsProm:
		a.Prometheus = metrics.NewPrometheus(cfg.Metrics.Namespace)
		return a.Prometheus, nil
	case config.MetricsCloud:
		clients, err := a.awsClients(ctx)
		if err != nil {
			return nil, err
		}
		return metrics.NewCloudWatch(clients.CloudWatch, cfg.Metrics.Namespace, a.Logger), nil
	default:
		return metrics.Nop{}, nil
	}
}

// Migrate applies pending schema migrations on the postgres backend. It is a
// no-op for DynamoDB, whose tables are provisioned outside the service.
func (a *App) Migrate(ctx context.Context) ([]string, error) {
	if a.Pool == nil {
		return nil, nil
	}
	applied, err := postgres.Migrate(ctx, a.Pool)
	if err != nil {
		return applied, err
	}
	if len(applied) > 0 {
		a.Logger.Info().Strs("versions", applied).Msg("migrations applied")
	}
	return applied, nil
}

// Seed loads the embedded default menu into the catalog.
func (a *App) Seed(ctx context.Context, force bool) (catalog.SeedResult, error) {
	menu, err := catalog.DefaultMenu()
	if err != nil {
		return catalog.SeedResult{}, err
	}
	res, err := catalog.Seed(ctx, a.Catalog, menu, force)
	if err != nil {
		return res, errors.Wrap(err, "seed menu")
	}
	a.Logger.Info().Int("inserted", res.Inserted).Int("skipped", res.Skipped).Msg("menu seeded")
	return res, nil
}

// Router builds the HTTP API over the wired components.
func (a *App) Router() *gin.Engine {
	hc := handlers.HandlerConfig{
		Orders:          a.Service,
		Menu:            a.Catalog,
		Health:          map[string]handlers.Pinger{"orders": a.Orders, "catalog": a.Catalog},
		Idempotency:     a.Idempotency,
		Prometheus:      a.Prometheus,
		Logger:          a.Logger,
		CORSAllowOrigin: a.Config.HTTP.CORSAllowOrigin,
	}
	return handlers.NewRouter(hc)
}

// Close runs the registered closers in reverse order.
func (a *App) Close(ctx context.Context) error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/royal-pizza/internal/config"
	"github.com/imrishuroy/royal-pizza/internal/events"
	"github.com/imrishuroy/royal-pizza/internal/numbering"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.AWS.Endpoint = "http://localhost:4566"
	return cfg
}

func TestBuild_DynamoDefaults(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	app, err := Build(ctx, testConfig(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(ctx) })

	assert.NotNil(t, app.Service)
	assert.NotNil(t, app.Idempotency)
	assert.NotNil(t, app.Prometheus)
	assert.Nil(t, app.Pool)

	applied, err := app.Migrate(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)

	w := httptest.NewRecorder()
	app.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBuild_RedisAllocatorAndKafka(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	cfg := testConfig()
	cfg.Ordering.SequenceStrategy = config.SequenceRedis
	cfg.Redis.Addr = mr.Addr()
	cfg.Events.Backend = config.EventsKafka
	cfg.Events.KafkaBrokers = []string{"localhost:9092"}
	cfg.Metrics.Backend = config.MetricsNone

	app, err := Build(ctx, cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, app.Prometheus)

	alloc, err := app.buildAllocator(ctx)
	require.NoError(t, err)
	assert.IsType(t, &numbering.RedisAllocator{}, alloc)

	pub, err := app.buildPublisher(ctx)
	require.NoError(t, err)
	assert.IsType(t, &events.KafkaPublisher{}, pub)

	assert.NoError(t, app.Close(ctx))
}

func TestBuild_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.Ordering.SequenceStrategy = config.SequenceRedis
	cfg.Redis.Addr = addr

	_, err := Build(context.Background(), cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "connect to redis")
}

func TestBuild_Allocators(t *testing.T) {
	ctx := context.Background()
	app := &App{Config: testConfig(), Logger: zerolog.Nop()}
	require.NoError(t, app.buildStorage(ctx))

	alloc, err := app.buildAllocator(ctx)
	require.NoError(t, err)
	assert.IsType(t, &numbering.CountAllocator{}, alloc)

	app.Config.Ordering.SequenceStrategy = config.SequenceCounter
	alloc, err = app.buildAllocator(ctx)
	require.NoError(t, err)
	assert.IsType(t, &numbering.DynamoAllocator{}, alloc)

	app.Config.Events.Backend = config.EventsSQS
	pub, err := app.buildPublisher(ctx)
	require.NoError(t, err)
	assert.IsType(t, &events.SQSPublisher{}, pub)
}

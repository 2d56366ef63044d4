package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestInitTracerDisabled(t *testing.T) {
	tp, err := InitTracer(Config{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, tp)
	assert.NoError(t, Shutdown(context.Background(), tp))
}

func TestGORMTracingPlugin(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Use(GORMTracingPlugin()))

	type widget struct {
		ID   uint
		Name string
	}
	require.NoError(t, db.AutoMigrate(&widget{}))

	ctx := context.Background()
	require.NoError(t, db.WithContext(ctx).Create(&widget{Name: "a"}).Error)
	var out []widget
	require.NoError(t, db.WithContext(ctx).Find(&out).Error)

	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
		for _, kv := range s.Attributes() {
			if kv.Key == dbSystemKey {
				assert.Equal(t, "sqlite", kv.Value.AsString())
			}
		}
	}
	assert.Contains(t, names, "db.insert")
	assert.Contains(t, names, "db.select")
}

func TestTraceExternalCall(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := TraceExternalCall(context.Background(), "s3", "put_object")
	EndExternalCall(span, assert.AnError)

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "s3.put_object", ended[0].Name())
	assert.Len(t, ended[0].Events(), 1, "error recorded as span event")
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{SamplingRate: 3}.withDefaults()
	assert.Equal(t, "nexus-backend", cfg.ServiceName)
	assert.Equal(t, 1.0, cfg.SamplingRate)

	cfg = Config{ServiceName: "api", SamplingRate: 0.25}.withDefaults()
	assert.Equal(t, "api", cfg.ServiceName)
	assert.Equal(t, 0.25, cfg.SamplingRate)
}

func TestExporterOptions(t *testing.T) {
	assert.Len(t, exporterOptions("localhost:4318"), 2)
	assert.Len(t, exporterOptions("http://collector:4318/v1/traces"), 2)
	assert.Len(t, exporterOptions("https://otel.example.com"), 1)
}

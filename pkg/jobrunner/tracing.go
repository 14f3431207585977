package jobrunner

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/glyphlang/glyph/pkg/tracing"
)

// Tracer wraps pkg/tracing with the one-span-per-Generate-call, one
// child-span-per-function shape the job runner needs.
type Tracer struct {
	provider *tracing.TracerProvider
}

// NewTracer initialises tracing for the job runner: the stdout exporter
// in development, OTLP/gRPC otherwise, following pkg/tracing.Config's
// existing ExporterType switch.
func NewTracer(environment, otlpEndpoint string) (*Tracer, error) {
	cfg := tracing.DefaultConfig()
	cfg.ServiceName = "glyphgen"
	cfg.Environment = environment
	if environment == "dev" || environment == "" {
		cfg.ExporterType = "stdout"
	} else {
		cfg.ExporterType = "otlp"
		cfg.OTLPEndpoint = otlpEndpoint
	}

	provider, err := tracing.InitTracing(cfg)
	if err != nil {
		return nil, err
	}
	return &Tracer{provider: provider}, nil
}

// Shutdown flushes and stops the tracer provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}

// StartJobSpan starts the span covering one compilation job's full
// generate-and-persist lifecycle.
func (t *Tracer) StartJobSpan(ctx context.Context, jobID string) (context.Context, func(err error)) {
	ctx, span := tracing.StartSpan(ctx, "jobrunner.generate")
	tracing.SetAttributes(ctx, attribute.String("job.id", jobID))
	return ctx, func(err error) {
		if err != nil {
			tracing.SetError(ctx, err)
		}
		span.End()
	}
}

// StartFunctionSpan starts a child span covering emission of a single
// function declaration.
func (t *Tracer) StartFunctionSpan(ctx context.Context, name string) (context.Context, func()) {
	ctx, span := tracing.StartSpan(ctx, "jobrunner.emit_function")
	tracing.SetAttributes(ctx, attribute.String("function.name", name))
	return ctx, span.End
}

package tracing

import (
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"

	"github.com/tigerroll/gridwatch/pkg/batch/core/metrics"
)

// Module installs the global tracer provider and provides the batch Tracer on top of it.
var Module = fx.Options(
	fx.Provide(NewTracerProvider),
	fx.Provide(fx.Annotate(
		func(_ *sdktrace.TracerProvider) *OpenTelemetryTracer { return NewOpenTelemetryTracer() },
		fx.As(new(metrics.Tracer)),
	)),
)

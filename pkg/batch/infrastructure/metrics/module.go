package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	metrics "github.com/tigerroll/gridwatch/pkg/batch/core/metrics"
)

// Module provides the PrometheusRecorder as metrics.MetricRecorder, and its registry
// for the /metrics endpoint.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewPrometheusRecorder,
		fx.As(fx.Self()),
		fx.As(new(metrics.MetricRecorder)),
	)),
	fx.Provide(func(r *PrometheusRecorder) *prometheus.Registry { return r.Registry() }),
)

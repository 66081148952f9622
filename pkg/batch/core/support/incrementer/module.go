package incrementer

import (
	"go.uber.org/fx"

	port "github.com/tigerroll/gridwatch/pkg/batch/core/application/port"
)

// Module provides a TimestampIncrementer as the run's port.JobParametersIncrementer.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		func() *TimestampIncrementer { return NewTimestampIncrementer(DefaultTimestampParameter) },
		fx.As(new(port.JobParametersIncrementer)),
	)),
)

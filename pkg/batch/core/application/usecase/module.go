package usecase

import (
	"go.uber.org/fx"
)

// Module provides the SimpleJobLauncher, also as JobLauncher.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewSimpleJobLauncher,
		fx.As(fx.Self()),
		fx.As(new(JobLauncher)),
	)),
)

package gorm

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/gridwatch/pkg/batch/adapter/database"
	"github.com/tigerroll/gridwatch/pkg/batch/support/util/logger"
)

func registerLifecycle(lc fx.Lifecycle, p *Provider) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Infof("Closing database connections.")
			return p.CloseAll()
		},
	})
}

// Module provides a read-write *Provider, also exposed as database.DBProvider.
// Concrete drivers are registered by importing the sqlite, postgres or mysql packages.
var Module = fx.Options(
	fx.Provide(fx.Annotate(NewProvider, fx.As(fx.Self()), fx.As(new(database.DBProvider)))),
	fx.Invoke(registerLifecycle),
)

// ReadOnlyModule is Module with every connection opened read-only.
var ReadOnlyModule = fx.Options(
	fx.Provide(fx.Annotate(NewReadOnlyProvider, fx.As(fx.Self()), fx.As(new(database.DBProvider)))),
	fx.Invoke(registerLifecycle),
)

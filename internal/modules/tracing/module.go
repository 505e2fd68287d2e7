package tracing

import (
	"context"

	"strategy_builder/internal/modules/config"
	"strategy_builder/pkg/tracing"

	"go.uber.org/fx"
)

// Module включает jaeger, если tracing.enabled. Без него спаны уходят в noop-трейсер.
func Module() fx.Option {
	return fx.Module("tracing",
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config) error {
			if !cfg.Tracing.Enabled {
				return nil
			}
			tracing.SetServiceName("strategy-builder")
			_, closeTracer, err := tracing.InitTracer(tracing.Config{
				Host: cfg.Tracing.Host,
				Port: cfg.Tracing.Port,
			})
			if err != nil {
				return err
			}
			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					closeTracer()
					return nil
				},
			})
			return nil
		}),
	)
}

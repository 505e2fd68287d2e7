package strategy_api

import (
	"strategy_builder/internal/modules/config"
	"strategy_builder/internal/modules/strategy_api/service"

	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("strategy_api",
		fx.Provide(
			func(cfg *config.Config) *service.Client {
				return service.NewClient(cfg.StrategyAPI.BaseURL, cfg.StrategyAPI.Timeout)
			},
		),
	)
}

package config

import (
	"strategy_builder/pkg/logger"

	"go.uber.org/fx"
)

// Module отдаёт *Config и сразу настраивает логгер по его секции log.
func Module() fx.Option {
	return fx.Module("config",
		fx.Provide(
			NewConfig,
		),
		fx.Invoke(func(cfg *Config) error {
			logger.SetServiceName("strategy-builder")
			return logger.Init(logger.Config{Debug: cfg.Log.Debug, Dir: cfg.Log.Dir})
		}),
	)
}

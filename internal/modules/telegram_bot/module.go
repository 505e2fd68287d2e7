package telegram

import (
	"context"

	"strategy_builder/internal/models"
	"strategy_builder/internal/modules/config"
	health "strategy_builder/internal/modules/health/service"
	"strategy_builder/internal/modules/telegram_bot/service"

	"go.uber.org/fx"
)

func NewDefaults(cfg *config.Config) service.Defaults {
	return service.Defaults{
		Timeframe:          models.Timeframe(cfg.DefaultTimeframe),
		Leverage:           cfg.DefaultLeverage,
		MonitorIntervalSec: cfg.DefaultMonitorIntervalSec,
	}
}

func Module() fx.Option {
	return fx.Module("telegram",
		// 1. Команды и сессии чатов
		fx.Provide(
			NewDefaults,
			service.NewCommander,
		),

		// 2. Транспорт
		fx.Provide(
			service.NewTelegram,
		),

		// Запуск основного цикла через Lifecycle
		fx.Invoke(
			func(lc fx.Lifecycle, t *service.Telegram, state *health.State) {
				lc.Append(fx.Hook{
					OnStart: func(ctx context.Context) error {
						t.Start()
						state.SetReady(true)
						return nil
					},
					OnStop: func(ctx context.Context) error {
						state.SetReady(false)
						t.Stop()
						return nil
					},
				})
			},
		),
	)
}

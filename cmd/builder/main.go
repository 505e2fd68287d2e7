package main

import (
	"context"
	"log"

	"strategy_builder/internal/modules/builder"
	"strategy_builder/internal/modules/catalog"
	"strategy_builder/internal/modules/config"
	"strategy_builder/internal/modules/health"
	"strategy_builder/internal/modules/postgres"
	"strategy_builder/internal/modules/saver"
	"strategy_builder/internal/modules/strategy_api"
	"strategy_builder/internal/modules/tracing"
	"strategy_builder/pkg/logger"

	telegram "strategy_builder/internal/modules/telegram_bot"

	"go.uber.org/fx"
)

func main() {
	defer logger.Sync()

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		tracing.Module(),
		catalog.Module(),
		builder.Module(),
		postgres.Module(),
		strategy_api.Module(),
		saver.Module(),
		health.Module(),
		telegram.Module(),
	)
	// логгер ещё может быть не настроен
	if err := app.Err(); err != nil {
		log.Fatal(err)
	}
	app.Run()
}

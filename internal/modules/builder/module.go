package builder

import (
	"strategy_builder/internal/modules/builder/service"

	"go.uber.org/fx"
)

// Module: валидатор общий, Builder создаётся на каждую сессию.
func Module() fx.Option {
	return fx.Module("builder",
		fx.Provide(
			service.NewValidator,
		),
	)
}

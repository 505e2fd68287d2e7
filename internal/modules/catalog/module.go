package catalog

import (
	"strategy_builder/internal/modules/catalog/service"

	"go.uber.org/fx"
)

// Module отдаёт встроенный каталог индикаторов.
func Module() fx.Option {
	return fx.Module("catalog",
		fx.Provide(
			service.Default,
		),
	)
}

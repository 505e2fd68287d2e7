package saver

import (
	"fmt"

	"strategy_builder/internal/modules/config"
	pg "strategy_builder/internal/modules/postgres/service"
	"strategy_builder/internal/modules/saver/service"
	api "strategy_builder/internal/modules/strategy_api/service"
	"strategy_builder/pkg/logger"

	"go.uber.org/fx"
)

type storeParams struct {
	fx.In

	Cfg      *config.Config
	API      *api.Client
	Postgres *pg.Strategies `optional:"true"`
}

// NewStore выбирает хранилище по storage.sink.
func NewStore(p storeParams) (service.Store, error) {
	switch p.Cfg.Storage.Sink {
	case config.SinkPostgres:
		if p.Postgres == nil {
			return nil, fmt.Errorf("postgres sink is not configured")
		}
		logger.Info("strategies are stored in postgres")
		return p.Postgres, nil
	case config.SinkHTTP:
		logger.Info("strategies are stored via %s", p.Cfg.StrategyAPI.BaseURL)
		return p.API, nil
	}
	return nil, fmt.Errorf("unknown storage.sink %q", p.Cfg.Storage.Sink)
}

func Module() fx.Option {
	return fx.Module("saver",
		fx.Provide(
			NewStore,
			func(s service.Store) service.Sink { return s },
			service.NewSaver,
		),
	)
}

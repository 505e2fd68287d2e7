package postgres

import (
	"context"
	"fmt"

	"strategy_builder/internal/modules/config"
	"strategy_builder/internal/modules/postgres/service"
	"strategy_builder/pkg/db"

	"go.uber.org/fx"
)

// Module поднимает пул только для storage.sink=postgres, иначе отдаёт nil.
func Module() fx.Option {
	return fx.Module("postgres",
		fx.Provide(
			func(ctx context.Context, lc fx.Lifecycle, cfg *config.Config) (*db.PgTxManager, error) {
				if cfg.Storage.Sink != config.SinkPostgres {
					return nil, nil
				}
				poolMaster, err := db.NewPool(ctx, db.PoolConfig{
					DSN: cfg.DB,
				})
				if err != nil {
					return nil, fmt.Errorf("failed to create poolMaster: %w", err)
				}

				err = poolMaster.Ping(ctx)
				if err != nil {
					poolMaster.Close()
					return nil, err
				}

				m := db.NewPgTxManager(poolMaster)
				lc.Append(fx.Hook{
					OnStop: func(context.Context) error {
						m.Close()
						return nil
					},
				})
				return m, nil
			},
			func(m *db.PgTxManager, cfg *config.Config) *service.Strategies {
				if m == nil {
					return nil
				}
				return service.NewStrategies(m, m.Conn(), cfg.Storage.UserID)
			},
		),
	)
}

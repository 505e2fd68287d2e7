package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/opentracing/opentracing-go"

	"strategy_builder/internal/models"
	"strategy_builder/pkg/db"
)

var ErrNotFound = errors.New("strategy not found")

const (
	strategyColumns = `id, name, COALESCE(description, ''), symbol_id, timeframe, COALESCE(leverage, 1),
	monitor_interval_sec, config_json, status, created_from_ai, created_at, updated_at`

	insertStrategy = `INSERT INTO strategies
	(user_id, name, description, symbol_id, timeframe, leverage, monitor_interval_sec,
	 status, config_json, created_from_ai, created_at, updated_at)
	VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, false, now(), now())
	RETURNING ` + strategyColumns

	updateStrategy = `UPDATE strategies SET
	name = $3, description = NULLIF($4, ''), symbol_id = $5, timeframe = $6, leverage = $7,
	monitor_interval_sec = $8, config_json = $9, updated_at = now()
	WHERE id = $1 AND user_id = $2
	RETURNING ` + strategyColumns

	selectStrategy = `SELECT ` + strategyColumns + ` FROM strategies WHERE id = $1`

	selectSymbols = `SELECT id, inst_id, COALESCE(base_ccy, ''), COALESCE(quote_ccy, ''), COALESCE(inst_type, '')
	FROM symbols WHERE is_active ORDER BY id`
)

// Strategies пишет записи стратегий напрямую в таблицу strategies.
type Strategies struct {
	db     db.TxManager
	conn   db.Transaction
	userID int64
}

func NewStrategies(tx db.TxManager, conn db.Transaction, userID int64) *Strategies {
	return &Strategies{db: tx, conn: conn, userID: userID}
}

// Create вставляет черновик стратегии.
func (s *Strategies) Create(ctx context.Context, rec models.StrategyRecord) (out models.StrategyRecord, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "pg.strategies.create")
	defer span.Finish()
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.CreateStrategy: %w", err)
		}
	}()

	err = s.db.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		row := tx.QueryRow(ctxTx, insertStrategy,
			s.userID, rec.Name, rec.Description, rec.SymbolID, string(rec.Timeframe),
			rec.Leverage, rec.MonitorIntervalSec, models.StrategyStatusDraft, rec.ConfigJSON,
		)
		out, err = scanStrategy(row)
		return err
	})
	return out, err
}

// Update перезаписывает поля стратегии, статус не трогает.
func (s *Strategies) Update(ctx context.Context, id int64, rec models.StrategyRecord) (out models.StrategyRecord, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "pg.strategies.update")
	span.SetTag("strategy.id", id)
	defer span.Finish()
	defer func() {
		if err != nil {
			err = fmt.Errorf("pg.UpdateStrategy %d: %w", id, err)
		}
	}()

	err = s.db.RunMaster(ctx, func(ctxTx context.Context, tx db.Transaction) error {
		row := tx.QueryRow(ctxTx, updateStrategy,
			id, s.userID, rec.Name, rec.Description, rec.SymbolID, string(rec.Timeframe),
			rec.Leverage, rec.MonitorIntervalSec, rec.ConfigJSON,
		)
		out, err = scanStrategy(row)
		return err
	})
	return out, err
}

// Get читает стратегию по id.
func (s *Strategies) Get(ctx context.Context, id int64) (models.StrategyRecord, error) {
	out, err := scanStrategy(s.conn.QueryRow(ctx, selectStrategy, id))
	if err != nil {
		return models.StrategyRecord{}, fmt.Errorf("pg.GetStrategy %d: %w", id, err)
	}
	return out, nil
}

// ListSymbols: активные инструменты, в том же виде, что отдаёт API.
func (s *Strategies) ListSymbols(ctx context.Context) ([]models.Symbol, error) {
	rows, err := s.conn.Query(ctx, selectSymbols)
	if err != nil {
		return nil, fmt.Errorf("pg.ListSymbols: %w", err)
	}
	defer rows.Close()

	var out []models.Symbol
	for rows.Next() {
		var sym models.Symbol
		if err := rows.Scan(&sym.ID, &sym.InstID, &sym.BaseCcy, &sym.QuoteCcy, &sym.InstType); err != nil {
			return nil, fmt.Errorf("pg.ListSymbols scan: %w", err)
		}
		sym.DisplayName = fmt.Sprintf("%s/%s (%s)", sym.BaseCcy, sym.QuoteCcy, sym.InstType)
		out = append(out, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pg.ListSymbols: %w", err)
	}
	return out, nil
}

func scanStrategy(row pgx.Row) (models.StrategyRecord, error) {
	var (
		rec models.StrategyRecord
		tf  string
	)
	err := row.Scan(
		&rec.ID, &rec.Name, &rec.Description, &rec.SymbolID, &tf, &rec.Leverage,
		&rec.MonitorIntervalSec, &rec.ConfigJSON, &rec.Status, &rec.CreatedFromAI,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.StrategyRecord{}, ErrNotFound
	}
	if err != nil {
		return models.StrategyRecord{}, err
	}
	rec.Timeframe = models.Timeframe(tf)
	return rec, nil
}

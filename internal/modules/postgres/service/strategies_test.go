package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy_builder/internal/models"
	"strategy_builder/pkg/db"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = r.values[i].(int64)
		case *int:
			*p = r.values[i].(int)
		case *string:
			*p = r.values[i].(string)
		case *float64:
			*p = r.values[i].(float64)
		case *bool:
			*p = r.values[i].(bool)
		case *time.Time:
			*p = r.values[i].(time.Time)
		default:
			return errors.New("unexpected dest")
		}
	}
	return nil
}

type fakeConn struct {
	sql  string
	args []any
	row  fakeRow
}

func (c *fakeConn) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (c *fakeConn) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (c *fakeConn) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	c.sql, c.args = sql, args
	return c.row
}

type fakeTx struct {
	conn *fakeConn
	runs int
}

func (f *fakeTx) RunMaster(ctx context.Context, fn func(ctxTx context.Context, tx db.Transaction) error) error {
	f.runs++
	return fn(ctx, f.conn)
}

func storedRow(id int64) fakeRow {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	return fakeRow{values: []any{
		id, "kdj dip", "", int64(3), "1H", 2.0, 60, `{"buy_groups":[],"sell_groups":[]}`,
		models.StrategyStatusDraft, false, ts, ts,
	}}
}

func draft() models.StrategyRecord {
	return models.StrategyRecord{
		Name:               "kdj dip",
		SymbolID:           3,
		Timeframe:          models.Timeframe1H,
		Leverage:           2,
		MonitorIntervalSec: 60,
		ConfigJSON:         `{"buy_groups":[],"sell_groups":[]}`,
	}
}

func TestStrategiesCreate(t *testing.T) {
	conn := &fakeConn{row: storedRow(11)}
	tx := &fakeTx{conn: conn}
	s := NewStrategies(tx, conn, 7)

	rec, err := s.Create(context.Background(), draft())
	require.NoError(t, err)
	assert.Equal(t, 1, tx.runs)
	assert.Equal(t, int64(11), rec.ID)
	assert.Equal(t, models.Timeframe1H, rec.Timeframe)
	assert.Equal(t, models.StrategyStatusDraft, rec.Status)

	assert.Contains(t, conn.sql, "INSERT INTO strategies")
	require.Len(t, conn.args, 9)
	assert.Equal(t, int64(7), conn.args[0], "user_id")
	assert.Equal(t, "1H", conn.args[4])
	assert.Equal(t, models.StrategyStatusDraft, conn.args[7])
}

func TestStrategiesUpdate(t *testing.T) {
	conn := &fakeConn{row: storedRow(11)}
	s := NewStrategies(&fakeTx{conn: conn}, conn, 7)

	_, err := s.Update(context.Background(), 11, draft())
	require.NoError(t, err)
	assert.Contains(t, conn.sql, "UPDATE strategies")
	assert.Equal(t, int64(11), conn.args[0])
	assert.Equal(t, int64(7), conn.args[1])
}

func TestStrategiesUpdateMissing(t *testing.T) {
	conn := &fakeConn{row: fakeRow{err: pgx.ErrNoRows}}
	s := NewStrategies(&fakeTx{conn: conn}, conn, 7)

	_, err := s.Update(context.Background(), 99, draft())
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "pg.UpdateStrategy 99")
}

func TestStrategiesGet(t *testing.T) {
	conn := &fakeConn{row: storedRow(5)}
	tx := &fakeTx{conn: conn}
	s := NewStrategies(tx, conn, 7)

	rec, err := s.Get(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), rec.ID)
	assert.Equal(t, 0, tx.runs, "read goes outside a transaction")
	assert.Contains(t, conn.sql, "FROM strategies WHERE id = $1")
}

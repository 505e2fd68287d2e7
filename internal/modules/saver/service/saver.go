package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"strategy_builder/internal/models"
	builder "strategy_builder/internal/modules/builder/service"
	"strategy_builder/pkg/logger"
)

var (
	ErrValidation  = errors.New("strategy is not valid")
	ErrSuperseded  = errors.New("save superseded by a newer one")
	ErrInvalidMeta = errors.New("invalid strategy meta")
)

// Sink: внешнее хранилище стратегий. Каждый вызов: один атомарный запрос.
type Sink interface {
	Create(ctx context.Context, rec models.StrategyRecord) (models.StrategyRecord, error)
	Update(ctx context.Context, id int64, rec models.StrategyRecord) (models.StrategyRecord, error)
}

// Store: Sink, из которого можно прочитать сохранённое и справочник инструментов.
type Store interface {
	Sink
	Get(ctx context.Context, id int64) (models.StrategyRecord, error)
	ListSymbols(ctx context.Context) ([]models.Symbol, error)
}

// Saver проверяет и сериализует стратегию и отдаёт её в Sink.
type Saver struct {
	sink      Sink
	validator *builder.Validator
}

func NewSaver(sink Sink, validator *builder.Validator) *Saver {
	return &Saver{sink: sink, validator: validator}
}

// NewSession: сессия сохранений одной редактируемой стратегии.
// recordID == 0 значит, что стратегия ещё не создана.
func (s *Saver) NewSession(recordID int64) *Session {
	return &Session{saver: s, recordID: recordID}
}

// Session гарантирует, что из конкурирующих сохранений применяется последнее:
// новое сохранение отменяет предыдущее, дожидается его завершения и только
// потом отправляет свой запрос.
type Session struct {
	saver *Saver

	mu       sync.Mutex
	seq      uint64
	cancel   context.CancelFunc
	done     chan struct{}
	recordID int64
}

// RecordID: id созданной записи, 0 если ещё не создана.
func (s *Session) RecordID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordID
}

// Save валидирует состояние, собирает config_json и отправляет запись.
func (s *Session) Save(ctx context.Context, meta StrategyMeta, state builder.State) (rec models.StrategyRecord, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "strategy.save")
	defer func() {
		if err != nil {
			ext.Error.Set(span, true)
			span.LogKV("error", err.Error())
		}
		span.Finish()
	}()

	meta = meta.WithDefaults()
	if err = meta.Validate(); err != nil {
		return models.StrategyRecord{}, err
	}
	if vs := s.saver.validator.Validate(state); len(vs) > 0 {
		return models.StrategyRecord{}, fmt.Errorf("%w: %w", ErrValidation, builder.ViolationsError(vs))
	}
	text, err := builder.Serialize(builder.GenerateConfig(state))
	if err != nil {
		return models.StrategyRecord{}, err
	}

	s.mu.Lock()
	s.seq++
	my := s.seq
	if s.cancel != nil {
		s.cancel()
	}
	prev := s.done
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	s.mu.Unlock()

	defer close(done)
	defer cancel()

	// предыдущий запрос уже отменён, ждём пока он вернётся
	if prev != nil {
		<-prev
	}

	s.mu.Lock()
	if s.seq != my {
		s.mu.Unlock()
		return models.StrategyRecord{}, ErrSuperseded
	}
	id := s.recordID
	s.mu.Unlock()

	span.SetTag("strategy.id", id)
	draft := meta.record(text)
	if id == 0 {
		rec, err = s.saver.sink.Create(runCtx, draft)
	} else {
		rec, err = s.saver.sink.Update(runCtx, id, draft)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// id запоминаем даже от вытесненного create, иначе следующий save создаст дубль
	if err == nil && rec.ID != 0 {
		s.recordID = rec.ID
	}
	if s.seq != my {
		logger.Info("save of strategy %q superseded", meta.Name)
		return models.StrategyRecord{}, ErrSuperseded
	}
	if err != nil {
		logger.Error("save strategy %q: %v", meta.Name, err)
		return models.StrategyRecord{}, fmt.Errorf("submit strategy: %w", err)
	}
	logger.Info("strategy %d %q saved", rec.ID, rec.Name)
	return rec, nil
}

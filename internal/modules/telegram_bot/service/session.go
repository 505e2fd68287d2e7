package service

import (
	"sync"

	"strategy_builder/internal/models"
	builder "strategy_builder/internal/modules/builder/service"
	saver "strategy_builder/internal/modules/saver/service"
	"strategy_builder/pkg/metrics"
)

// Defaults: метаданные новой стратегии.
type Defaults struct {
	Timeframe          models.Timeframe
	Leverage           float64
	MonitorIntervalSec int
}

// Session: редактируемая стратегия одного чата. Сессии не делят изменяемое состояние.
type Session struct {
	mu      sync.Mutex
	builder *builder.Builder
	meta    saver.StrategyMeta
	save    *saver.Session
}

func (c *Commander) newSession() *Session {
	return &Session{
		builder: builder.NewBuilder(c.catalog),
		meta: saver.StrategyMeta{
			Timeframe:          c.defaults.Timeframe,
			Leverage:           c.defaults.Leverage,
			MonitorIntervalSec: c.defaults.MonitorIntervalSec,
		},
		save: c.saver.NewSession(0),
	}
}

// session возвращает сессию чата, создавая её при первом обращении.
func (c *Commander) session(chatID int64) *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[chatID]
	if !ok {
		s = c.newSession()
		c.sessions[chatID] = s
		c.touchSessions()
	}
	return s
}

func (c *Commander) replaceSession(chatID int64, s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[chatID] = s
	c.touchSessions()
}

func (c *Commander) touchSessions() {
	metrics.Sessions.Set(float64(len(c.sessions)))
	if c.state != nil {
		c.state.SetSessions(len(c.sessions))
	}
}

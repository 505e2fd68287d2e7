package service

import (
	"sync/atomic"
	"time"
)

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	botConnected atomic.Bool
	sessions     atomic.Int64
	lastSaveUnix atomic.Int64 // unix seconds
	saveErrors   atomic.Int64
}

func NewState() *State {
	return &State{startedAt: time.Now()}
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

func (s *State) SetBotConnected(v bool) { s.botConnected.Store(v) }
func (s *State) BotConnected() bool     { return s.botConnected.Load() }

func (s *State) SetSessions(n int) { s.sessions.Store(int64(n)) }
func (s *State) Sessions() int64   { return s.sessions.Load() }

// TouchSave отмечает завершённое сохранение, err != nil считается в saveErrors.
func (s *State) TouchSave(t time.Time, err error) {
	if err != nil {
		s.saveErrors.Add(1)
		return
	}
	s.lastSaveUnix.Store(t.Unix())
}

func (s *State) SaveErrors() int64 { return s.saveErrors.Load() }

func (s *State) LastSave() time.Time {
	u := s.lastSaveUnix.Load()
	if u == 0 {
		return time.Time{}
	}
	return time.Unix(u, 0)
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }

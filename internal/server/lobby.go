package server

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"
)

var ErrMatchNotFound = errors.New("match not found")

// Lobby держит запущенные матчи. JOIN без идентификатора матча
// попадает в открытый матч; если он заполнен, создаётся новый.
type Lobby struct {
	cfg engine.MatchConfig

	mu      sync.RWMutex
	matches map[string]*Match
	open    *Match

	ctx  context.Context
	wg   sync.WaitGroup
	sink ReplaySink
}

// NewLobby создаёт лобби. Циклы матчей живут, пока жив ctx.
// sink может быть nil — тогда реплеи не сохраняются.
func NewLobby(ctx context.Context, cfg engine.MatchConfig, sink ReplaySink) *Lobby {
	return &Lobby{
		cfg:     cfg,
		matches: make(map[string]*Match),
		ctx:     ctx,
		sink:    sink,
	}
}

// Get ищет матч по идентификатору.
func (l *Lobby) Get(id string) (*Match, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if m, ok := l.matches[id]; ok {
		return m, nil
	}
	return nil, ErrMatchNotFound
}

// Matches — все матчи, отсортированные по идентификатору.
func (l *Lobby) Matches() []*Match {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Match, 0, len(l.matches))
	for _, m := range l.matches {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out
}

// Open возвращает открытый матч, создавая и запуская его при необходимости.
func (l *Lobby) Open() *Match {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.open == nil {
		l.open = l.startLocked()
	}
	return l.open
}

// Rotate закрывает набор в текущий открытый матч (он заполнен).
func (l *Lobby) Rotate(full *Match) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.open == full {
		l.open = nil
	}
}

func (l *Lobby) startLocked() *Match {
	m := NewMatch(l.cfg)
	l.matches[m.ID.String()] = m

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		if err := m.Run(l.ctx); err != nil {
			logger.Log.WithField("match", m.ID.String()).WithError(err).Error("Match aborted")
		}
		if err := m.Finish(l.sink); err != nil {
			logger.Log.WithField("match", m.ID.String()).WithError(err).Error("Failed to save replay")
		}
	}()
	return m
}

// Wait дожидается остановки всех матчей (после отмены ctx) и сохранения их реплеев.
func (l *Lobby) Wait() {
	l.wg.Wait()
}

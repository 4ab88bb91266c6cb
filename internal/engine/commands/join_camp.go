package commands

import (
	"fmt"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/ecs"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/systems"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
)

// JoinCamp — вход лагеря в матч: сущность-лагерь с экономикой. Один раз на лагерь.
type JoinCamp struct {
	engine.Header `json:"-"`
	api.JoinCampPayload
}

func (c *JoinCamp) Type() domain.CommandType { return domain.CommandJoinCamp }

func (c *JoinCamp) Execute(w *engine.World) error {
	if _, ok := systems.FindCamp(w, c.PlayerID); ok {
		return fmt.Errorf("%w: %d", ErrAlreadyJoined, c.PlayerID)
	}

	id := w.Entities().Create()
	if err := ecs.Add(w.Store(), id, domain.Camp{ID: c.PlayerID}); err != nil {
		return err
	}
	_ = ecs.Add(w.Store(), id, domain.Economy{Credits: c.Credits})

	ecs.Publish(w.Events(), domain.CampJoined{
		Tick:    w.CurrentTick(),
		Camp:    c.PlayerID,
		Entity:  id,
		Credits: c.Credits,
	})
	return nil
}

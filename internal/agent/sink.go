package agent

import (
	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine/commands"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
)

// WorldSink отправляет команды бота прямо в планировщик локального мира
// на следующий тик (офлайн-игра против компьютера).
type WorldSink struct {
	World    *engine.World
	Registry *commands.Registry
}

func (s WorldSink) SubmitInput(camp types.CampID, in api.Input) error {
	cmd, err := s.Registry.DecodeInput(camp, in, domain.SourceAI)
	if err != nil {
		return err
	}
	return s.World.Submit(cmd)
}

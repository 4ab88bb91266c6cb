package commands

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"

	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownCommand   = errors.New("commands: unknown command type")
	ErrMalformedCommand = errors.New("commands: malformed command payload")
)

// DecodeFunc — декодер payload одного тега.
type DecodeFunc func(raw json.RawMessage) (engine.Command, error)

// WithPayload превращает конструктор команды из типизированного payload в DecodeFunc.
// Берёт на себя Unmarshal и Validate.
func WithPayload[T any](build func(T) engine.Command) DecodeFunc {
	return func(raw json.RawMessage) (engine.Command, error) {
		var payload T

		// 1. Распаковка JSON
		if len(raw) == 0 {
			return nil, fmt.Errorf("%w: empty payload", ErrMalformedCommand)
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
		}

		// 2. Автоматическая валидация
		if v, ok := any(payload).(api.Validator); ok {
			if err := v.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedCommand, err)
			}
		}

		// 3. Сборка команды
		return build(payload), nil
	}
}

// Registry — закрытая таблица тег -> декодер. Заполняется один раз при создании,
// никакой рефлексии и динамического поиска типов.
type Registry struct {
	decoders map[domain.CommandType]DecodeFunc
}

// NewRegistry создаёт таблицу всех команд протокола.
func NewRegistry() *Registry {
	return &Registry{
		decoders: map[domain.CommandType]DecodeFunc{
			domain.CommandCreateUnit: WithPayload(func(p api.CreateUnitPayload) engine.Command { return &CreateUnit{CreateUnitPayload: p} }),
			domain.CommandMoveUnit:   WithPayload(func(p api.MoveUnitPayload) engine.Command { return &MoveUnit{MoveUnitPayload: p} }),
			domain.CommandAttackUnit: WithPayload(func(p api.AttackUnitPayload) engine.Command { return &AttackUnit{AttackUnitPayload: p} }),
			domain.CommandSellUnit:   WithPayload(func(p api.SellUnitPayload) engine.Command { return &SellUnit{SellUnitPayload: p} }),
			domain.CommandJoinCamp:   WithPayload(func(p api.JoinCampPayload) engine.Command { return &JoinCamp{JoinCampPayload: p} }),
		},
	}
}

// Known — есть ли тег в таблице.
func (r *Registry) Known(t domain.CommandType) bool {
	_, ok := r.decoders[t]
	return ok
}

// DecodeInput декодирует одну команду кадра.
func (r *Registry) DecodeInput(camp types.CampID, in api.Input, source domain.Source) (engine.Command, error) {
	if in.Malformed != "" {
		return nil, fmt.Errorf("%w: %s", ErrMalformedCommand, in.Malformed)
	}
	t := domain.CommandType(in.CommandType)
	decode, ok := r.decoders[t]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCommand, in.CommandType)
	}
	cmd, err := decode(in.Command)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t, err)
	}
	h := cmd.Head()
	h.PlayerID = camp
	h.Source = source
	return cmd, nil
}

// Decode раскладывает кадр на команды в порядке поступления (лагерь за лагерем).
// Неизвестные и битые команды пропускаются по одной с предупреждением в логе,
// остальные команды кадра применяются.
func (r *Registry) Decode(frame api.FrameMessage, source domain.Source) []engine.Command {
	cmds := make([]engine.Command, 0)
	for ci, entry := range frame.Data {
		if entry.Malformed != "" {
			logger.Log.WithFields(logrus.Fields{
				"frame": frame.Frame,
				"entry": ci,
			}).Warnf("Skipping camp entry: %s", entry.Malformed)
			continue
		}
		camp := types.CampID(entry.CampID)
		for idx, in := range entry.Inputs {
			cmd, err := r.DecodeInput(camp, in, source)
			if err != nil {
				logger.Log.WithFields(logrus.Fields{
					"frame":        frame.Frame,
					"camp":         camp,
					"input":        idx,
					"command_type": in.CommandType,
				}).WithError(err).Warn("Skipping command")
				continue
			}
			cmd.Head().ExecuteFrame = types.Tick(frame.Frame)
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

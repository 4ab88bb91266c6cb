package server

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/agent"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/game"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/network"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/version"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrMatchFull     = errors.New("match is full")
	ErrCampNotJoined = errors.New("camp is not in the match")
	ErrBadConfirm    = errors.New("confirm out of order")
)

// ReplaySink — куда матч сдаёт запись партии по окончании (storage.Archive).
type ReplaySink interface {
	SaveReplay(session *domain.ReplaySession) error
}

// Match — ретранслятор одной партии.
//
// Состояние мира по сети не ходит, только кадры: матч собирает INPUT лагерей,
// раз в период тика запечатывает их в кадр, рассылает кадр всем и сам
// прогоняет его на своём экземпляре мира (для ботов, дайджеста и реплея). Клиенты подтверждают каждый кадр ровно один раз по возрастанию.
type Match struct {
	ID           uuid.UUID
	Seed         int64
	TickRate     int
	Camps        int
	Bots         int
	StartCredits int64

	hub  *network.Broadcaster
	inst *engine.Instance
	bots []*agent.Bot

	mu        sync.Mutex
	pending   map[types.CampID][]api.Input
	humans    map[types.CampID]string // camp -> имя игрока
	confirmed map[types.CampID]int64
	history   []api.FrameMessage
	nextFrame int64

	simMu sync.Mutex // мир хоста: шаг симуляции против чтения дайджеста

	log *logrus.Entry
}

// NewMatch создаёт матч. Seed == 0 — зерно выбирается из идентификатора матча
// и записывается в реплей, так что партию всё равно можно воспроизвести.
func NewMatch(cfg engine.MatchConfig) *Match {
	id := uuid.New()
	seed := cfg.Seed
	if seed == 0 {
		seed = int64(binary.LittleEndian.Uint64(id[:8]) >> 1)
	}

	m := &Match{
		ID:           id,
		Seed:         seed,
		TickRate:     cfg.TickRate,
		Camps:        cfg.Camps,
		Bots:         cfg.Bots,
		StartCredits: cfg.StartCredits,
		hub:          network.NewBroadcaster(),
		pending:      make(map[types.CampID][]api.Input),
		humans:       make(map[types.CampID]string),
		confirmed:    make(map[types.CampID]int64),
		nextFrame:    1,
		log:          logger.Log.WithField("match", id.String()),
	}

	m.inst = game.NewInstance(engine.WorldConfig{ID: id.String(), Seed: seed, TickRate: cfg.TickRate}, nil, domain.SourceNetwork)
	m.inst.Replay.MatchID = id

	// Боты занимают старшие лагеря, люди — младшие.
	for i := 0; i < cfg.Bots; i++ {
		camp := types.CampID(cfg.Camps - 1 - i)
		bot := agent.NewBot(camp, seed+int64(camp)+1, cfg.StartCredits, m)
		m.bots = append(m.bots, bot)
		m.inst.OnTick(bot.OnTick)
	}

	m.log.WithFields(logrus.Fields{
		"seed":  seed,
		"camps": cfg.Camps,
		"bots":  cfg.Bots,
	}).Info("Match created")
	return m
}

// --- ЛОББИ ---

// Join занимает свободный человеческий лагерь и подписывает его на кадры.
// Вместе с каналом возвращаются все уже разосланные кадры: опоздавший клиент
// должен прогнать партию с первого кадра.
func (m *Match) Join(name string) (api.WelcomePayload, []api.FrameMessage, chan api.ServerMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	camp := types.CampID(-1)
	for c := 0; c < m.Camps-m.Bots; c++ {
		if _, taken := m.humans[types.CampID(c)]; !taken {
			camp = types.CampID(c)
			break
		}
	}
	if camp < 0 {
		return api.WelcomePayload{}, nil, nil, ErrMatchFull
	}

	m.humans[camp] = name
	m.confirmed[camp] = 0
	ch := m.hub.Register(camp)

	backlog := make([]api.FrameMessage, len(m.history))
	copy(backlog, m.history)

	m.log.WithFields(logrus.Fields{"camp": camp, "name": name}).Info("Player joined")
	return api.WelcomePayload{
		MatchID:   m.ID.String(),
		CampID:    int32(camp),
		Seed:      m.Seed,
		TickRate:  int32(m.TickRate),
		NextFrame: m.nextFrame,
		Protocol:  version.Protocol,
	}, backlog, ch, nil
}

// Leave освобождает лагерь. Юниты лагеря остаются в мире.
func (m *Match) Leave(camp types.CampID, ch chan api.ServerMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hub.Unregister(camp, ch)
	if !m.hub.HasSubscriber(camp) {
		delete(m.humans, camp)
		delete(m.confirmed, camp)
		delete(m.pending, camp)
		m.log.WithField("camp", camp).Info("Player left")
	}
}

// SubmitInput ставит команду лагеря в ближайший кадр. Содержимое команды
// сервер не разбирает: неизвестные теги пропускают сами получатели.
func (m *Match) SubmitInput(camp types.CampID, in api.Input) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isPlayingLocked(camp) {
		return ErrCampNotJoined
	}
	m.pending[camp] = append(m.pending[camp], in)
	return nil
}

// Confirm принимает подтверждение кадра от клиента: ровно один раз и по возрастанию.
func (m *Match) Confirm(camp types.CampID, frame int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	last, ok := m.confirmed[camp]
	if !ok {
		return ErrCampNotJoined
	}
	if frame != last+1 || frame >= m.nextFrame {
		m.log.WithFields(logrus.Fields{
			"camp":     camp,
			"frame":    frame,
			"expected": last + 1,
		}).Warn("Confirm out of order")
		return fmt.Errorf("%w: camp %d confirmed %d, expected %d", ErrBadConfirm, camp, frame, last+1)
	}
	m.confirmed[camp] = frame
	return nil
}

func (m *Match) isPlayingLocked(camp types.CampID) bool {
	if _, ok := m.humans[camp]; ok {
		return true
	}
	for _, b := range m.bots {
		if b.Camp == camp {
			return true
		}
	}
	return false
}

// --- КАДРЫ ---

// Seal запечатывает накопленный ввод в следующий кадр и рассылает его.
// Лагеря в кадре идут по возрастанию, команды лагеря — в порядке прихода.
func (m *Match) Seal() api.FrameMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	camps := make([]types.CampID, 0, len(m.pending))
	for c, inputs := range m.pending {
		if len(inputs) > 0 {
			camps = append(camps, c)
		}
	}
	sort.Slice(camps, func(i, j int) bool { return camps[i] < camps[j] })

	frame := api.FrameMessage{Frame: m.nextFrame, Data: make([]api.CampInputs, 0, len(camps))}
	for _, c := range camps {
		frame.Data = append(frame.Data, api.CampInputs{CampID: int32(c), Inputs: m.pending[c]})
	}
	m.pending = make(map[types.CampID][]api.Input)
	m.nextFrame++
	m.history = append(m.history, frame)

	msg, err := api.NewServerMessage(api.MsgFrame, frame)
	if err != nil {
		m.log.WithError(err).Error("Failed to encode frame")
		return frame
	}
	for _, camp := range m.hub.Broadcast(msg) {
		// Клиент, пропустивший кадр, обречён на рассинхронизацию: отключаем.
		m.log.WithFields(logrus.Fields{"camp": camp, "frame": frame.Frame}).Warn("Subscriber lagging, dropping")
		m.dropLocked(camp)
	}
	return frame
}

func (m *Match) dropLocked(camp types.CampID) {
	delete(m.humans, camp)
	delete(m.confirmed, camp)
	delete(m.pending, camp)
	m.hub.Drop(camp)
}

// Step запечатывает кадр и прогоняет его на мире хоста.
func (m *Match) Step() error {
	frame := m.Seal()

	m.simMu.Lock()
	defer m.simMu.Unlock()
	if err := m.inst.Push(frame); err != nil {
		return err
	}
	return m.inst.Step()
}

// Run выдаёт кадры с частотой тика, пока не закончится ctx.
func (m *Match) Run(ctx context.Context) error {
	rate := m.TickRate
	if rate <= 0 {
		rate = 20
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	m.log.WithField("tick_rate", rate).Info("Match loop started")
	for {
		select {
		case <-ctx.Done():
			m.log.WithField("frame", m.NextFrame()-1).Info("Match loop stopped")
			return nil
		case <-ticker.C:
			if err := m.Step(); err != nil {
				m.log.WithError(err).Error("Host simulation failed")
				return err
			}
		}
	}
}

// --- СОСТОЯНИЕ ---

func (m *Match) NextFrame() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextFrame
}

// Tick — последний исполненный тик мира хоста.
func (m *Match) Tick() types.Tick {
	m.simMu.Lock()
	defer m.simMu.Unlock()
	return m.inst.World().CurrentTick()
}

// Digest — дайджест мира хоста и тик, на котором он снят.
func (m *Match) Digest() (types.Tick, string, error) {
	m.simMu.Lock()
	defer m.simMu.Unlock()
	d, err := m.inst.World().Digest()
	return m.inst.World().CurrentTick(), d, err
}

// MatchStatus — сводка для отладочных ручек.
type MatchStatus struct {
	ID        string         `json:"id"`
	Seed      int64          `json:"seed"`
	Tick      types.Tick     `json:"tick"`
	NextFrame int64          `json:"nextFrame"`
	Players   map[int]string `json:"players"`
	Confirmed map[int]int64  `json:"confirmed"`
	Bots      []int          `json:"bots"`
}

func (m *Match) Status() MatchStatus {
	st := MatchStatus{
		ID:        m.ID.String(),
		Seed:      m.Seed,
		Tick:      m.Tick(),
		Players:   make(map[int]string),
		Confirmed: make(map[int]int64),
	}
	for _, b := range m.bots {
		st.Bots = append(st.Bots, int(b.Camp))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	st.NextFrame = m.nextFrame
	for c, name := range m.humans {
		st.Players[int(c)] = name
	}
	for c, f := range m.confirmed {
		st.Confirmed[int(c)] = f
	}
	return st
}

// Finish закрывает запись партии и сдаёт её в sink.
func (m *Match) Finish(sink ReplaySink) error {
	m.simMu.Lock()
	defer m.simMu.Unlock()

	digest, err := m.inst.World().Digest()
	if err != nil {
		return err
	}
	raw, err := hex.DecodeString(digest)
	if err != nil {
		return err
	}
	copy(m.inst.Replay.FinalDigest[:], raw)

	if sink == nil {
		return nil
	}
	return sink.SaveReplay(m.inst.Replay)
}

package server

import (
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func testConfig() engine.MatchConfig {
	return engine.MatchConfig{TickRate: 50, Seed: 42, Camps: 2, StartCredits: 5000}
}

func joinInput(credits int64) api.Input {
	raw, _ := json.Marshal(api.JoinCampPayload{Credits: credits})
	return api.Input{CommandType: uint16(domain.CommandJoinCamp), Command: raw}
}

func TestMatch_JoinAssignsCamps(t *testing.T) {
	m := NewMatch(testConfig())

	w0, backlog, _, err := m.Join("alice")
	if err != nil || w0.CampID != 0 || len(backlog) != 0 {
		t.Fatalf("first join: camp=%d backlog=%d err=%v", w0.CampID, len(backlog), err)
	}
	if w0.Seed != 42 || w0.NextFrame != 1 || w0.MatchID != m.ID.String() {
		t.Errorf("unexpected welcome %+v", w0)
	}
	w1, _, _, err := m.Join("bob")
	if err != nil || w1.CampID != 1 {
		t.Fatalf("second join: camp=%d err=%v", w1.CampID, err)
	}
	if _, _, _, err := m.Join("carol"); !errors.Is(err, ErrMatchFull) {
		t.Errorf("third join: expected ErrMatchFull, got %v", err)
	}
}

func TestMatch_RandomSeedIsRecorded(t *testing.T) {
	cfg := testConfig()
	cfg.Seed = 0
	m := NewMatch(cfg)
	if m.Seed == 0 {
		t.Fatal("host must pick a seed")
	}
	if m.inst.Replay.Seed != m.Seed || m.inst.World().Seed() != m.Seed {
		t.Error("picked seed must reach the world and the replay")
	}
}

func TestMatch_SealOrdersCamps(t *testing.T) {
	m := NewMatch(testConfig())
	_, _, _, _ = m.Join("alice")
	_, _, _, _ = m.Join("bob")

	_ = m.SubmitInput(1, joinInput(1))
	_ = m.SubmitInput(0, joinInput(2))
	_ = m.SubmitInput(1, joinInput(3))
	if err := m.SubmitInput(5, joinInput(4)); !errors.Is(err, ErrCampNotJoined) {
		t.Errorf("foreign camp: expected ErrCampNotJoined, got %v", err)
	}

	frame := m.Seal()
	if frame.Frame != 1 || len(frame.Data) != 2 {
		t.Fatalf("unexpected frame %+v", frame)
	}
	if frame.Data[0].CampID != 0 || frame.Data[1].CampID != 1 {
		t.Errorf("camps must be ascending: %d, %d", frame.Data[0].CampID, frame.Data[1].CampID)
	}
	if len(frame.Data[1].Inputs) != 2 || string(frame.Data[1].Inputs[0].Command) != `{"credits":1}` {
		t.Errorf("camp inputs must keep arrival order: %+v", frame.Data[1].Inputs)
	}

	empty := m.Seal()
	if empty.Frame != 2 || len(empty.Data) != 0 {
		t.Errorf("second frame must be empty, got %+v", empty)
	}
}

func TestMatch_ConfirmExactlyOnceInOrder(t *testing.T) {
	m := NewMatch(testConfig())
	_, _, _, _ = m.Join("alice")
	m.Seal()
	m.Seal()

	if err := m.Confirm(0, 2); !errors.Is(err, ErrBadConfirm) {
		t.Errorf("skipping frame 1: expected ErrBadConfirm, got %v", err)
	}
	if err := m.Confirm(0, 1); err != nil {
		t.Fatal(err)
	}
	if err := m.Confirm(0, 1); !errors.Is(err, ErrBadConfirm) {
		t.Errorf("double confirm: expected ErrBadConfirm, got %v", err)
	}
	if err := m.Confirm(0, 2); err != nil {
		t.Fatal(err)
	}
	if err := m.Confirm(0, 3); !errors.Is(err, ErrBadConfirm) {
		t.Errorf("unsealed frame: expected ErrBadConfirm, got %v", err)
	}
	if err := m.Confirm(1, 1); !errors.Is(err, ErrCampNotJoined) {
		t.Errorf("unknown camp: expected ErrCampNotJoined, got %v", err)
	}
}

func TestMatch_LateJoinGetsBacklog(t *testing.T) {
	m := NewMatch(testConfig())
	for i := 0; i < 3; i++ {
		if err := m.Step(); err != nil {
			t.Fatal(err)
		}
	}

	w, backlog, _, err := m.Join("late")
	if err != nil {
		t.Fatal(err)
	}
	if w.NextFrame != 4 || len(backlog) != 3 || backlog[0].Frame != 1 {
		t.Errorf("next=%d backlog=%d", w.NextFrame, len(backlog))
	}
	if m.Tick() != 3 {
		t.Errorf("host tick = %d, want 3", m.Tick())
	}
}

type memorySink struct {
	session *domain.ReplaySession
}

func (s *memorySink) SaveReplay(session *domain.ReplaySession) error {
	s.session = session
	return nil
}

func TestMatch_BotsPlayOnHost(t *testing.T) {
	cfg := testConfig()
	cfg.Bots = 1
	m := NewMatch(cfg)

	for i := 0; i < 30; i++ {
		if err := m.Step(); err != nil {
			t.Fatal(err)
		}
	}

	joined := false
	for _, f := range m.history {
		for _, c := range f.Data {
			if c.CampID == 1 {
				joined = true
			}
		}
	}
	if !joined {
		t.Error("bot inputs must be sealed into frames")
	}

	sink := &memorySink{}
	if err := m.Finish(sink); err != nil {
		t.Fatal(err)
	}
	if sink.session == nil || sink.session.FinalTick != 30 || len(sink.session.Frames) != 30 {
		t.Fatalf("unexpected replay: %+v", sink.session)
	}
	if sink.session.MatchID != m.ID {
		t.Error("replay must carry the match id")
	}
	if sink.session.FinalDigest == [32]byte{} {
		t.Error("final digest must be filled")
	}
}

func TestClient_ForwardStopsWhenWriterGone(t *testing.T) {
	c := &Client{
		Send:    make(chan api.ServerMessage, 1),
		updates: make(chan api.ServerMessage, 4),
		done:    make(chan struct{}),
	}
	c.Send <- api.ServerMessage{Type: api.MsgFrame} // writePump больше не читает
	c.updates <- api.ServerMessage{Type: api.MsgFrame}

	finished := make(chan struct{})
	go func() {
		c.forward()
		close(finished)
	}()

	close(c.done)
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("forward blocked on a full Send after the writer exited")
	}
}

func TestClient_ForwardClosesSendWhenUnsubscribed(t *testing.T) {
	c := &Client{
		Send:    make(chan api.ServerMessage, 4),
		updates: make(chan api.ServerMessage, 4),
		done:    make(chan struct{}),
	}
	c.updates <- api.ServerMessage{Type: api.MsgFrame}
	close(c.updates)
	c.forward()

	if msg, ok := <-c.Send; !ok || msg.Type != api.MsgFrame {
		t.Fatal("pending frame must be forwarded")
	}
	if _, ok := <-c.Send; ok {
		t.Error("Send must be closed after updates close")
	}
}

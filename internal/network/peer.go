package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/version"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const writeWait = 10 * time.Second

// Peer — клиентская сторона протокола: подключение к серверу-ретранслятору.
//
// Peer реализует engine.Confirmer (CONFIRM после передачи кадра планировщику)
// и agent.CommandSink (INPUT с командами игрока или бота).
type Peer struct {
	conn    *websocket.Conn
	writeMu sync.Mutex // gorilla допускает только одного писателя
	welcome api.WelcomePayload

	log *logrus.Entry
}

// Dial подключается, отправляет JOIN и ждёт WELCOME.
// Версию протокола в JOIN проставляет сам Dial.
func Dial(ctx context.Context, url string, join api.JoinPayload) (*Peer, error) {
	join.Protocol = version.Protocol

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	p := &Peer{conn: conn, log: logger.Log.WithField("component", "peer")}

	if err := p.send(api.MsgJoin, 0, join); err != nil {
		_ = conn.Close()
		return nil, err
	}

	var msg api.ServerMessage
	if err := conn.ReadJSON(&msg); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("handshake: %w", err)
	}
	switch msg.Type {
	case api.MsgWelcome:
		if err := json.Unmarshal(msg.Payload, &p.welcome); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("welcome: %w", err)
		}
		if err := version.CheckProtocol(p.welcome.Protocol); err != nil {
			_ = conn.Close()
			return nil, err
		}
	case api.MsgError:
		var e api.ErrorPayload
		_ = json.Unmarshal(msg.Payload, &e)
		_ = conn.Close()
		return nil, fmt.Errorf("join refused: %s", e.Message)
	default:
		_ = conn.Close()
		return nil, fmt.Errorf("handshake: unexpected %q", msg.Type)
	}

	p.log = p.log.WithFields(logrus.Fields{"match": p.welcome.MatchID, "camp": p.welcome.CampID})
	p.log.Info("Joined match")
	return p, nil
}

func (p *Peer) Welcome() api.WelcomePayload { return p.welcome }
func (p *Peer) Camp() types.CampID { return types.CampID(p.welcome.CampID) }

// ConfirmFrame сообщает серверу, что кадр передан планировщику.
func (p *Peer) ConfirmFrame(tick types.Tick) error {
	return p.send(api.MsgConfirm, p.welcome.CampID, api.ConfirmPayload{Frame: int64(tick)})
}

// SubmitInput отправляет команду лагеря. Сервер включит её в ближайший кадр.
func (p *Peer) SubmitInput(camp types.CampID, in api.Input) error {
	return p.send(api.MsgInput, int32(camp), in)
}

// Run читает кадры и передаёт их в sink, пока соединение живо или не закончится ctx.
func (p *Peer) Run(ctx context.Context, sink FrameSink) error {
	recv := NewReceiver(sink)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = p.conn.Close()
		case <-stop:
		}
	}()

	for {
		var msg api.ServerMessage
		if err := p.conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		switch msg.Type {
		case api.MsgFrame:
			// Битый кадр Receiver уже залогировал; соединение рвём только на рассинхронизации.
			if err := recv.Receive(msg.Payload); errors.Is(err, engine.ErrDesync) {
				return err
			}
		case api.MsgError:
			var e api.ErrorPayload
			_ = json.Unmarshal(msg.Payload, &e)
			p.log.Warnf("Server error: %s", e.Message)
		default:
			p.log.WithField("type", msg.Type).Debug("Ignoring message")
		}
	}
}

func (p *Peer) Close() error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	_ = p.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
	return p.conn.Close()
}

func (p *Peer) send(msgType string, camp int32, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if err := p.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return p.conn.WriteJSON(api.ClientMessage{Type: msgType, CampID: camp, Payload: raw})
}

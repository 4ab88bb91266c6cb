package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/version"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между Websocket и матчем
type Client struct {
	Lobby *Lobby
	Conn  *websocket.Conn
	Send  chan api.ServerMessage

	match   *Match
	camp    types.CampID
	updates chan api.ServerMessage
	done    chan struct{} // закрывается при выходе writePump
	log     *logrus.Entry
}

func NewClient(lobby *Lobby, conn *websocket.Conn) *Client {
	return &Client{
		Lobby: lobby,
		Conn:  conn,
		Send:  make(chan api.ServerMessage, 256),
		done:  make(chan struct{}),
		log:   logger.Log.WithField("remote", conn.RemoteAddr().String()),
	}
}

// serve выполняет рукопожатие синхронно (WELCOME и догоняющие кадры уходят
// раньше любых свежих кадров), затем запускает пампы.
func (c *Client) serve() {
	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	if err := c.handshake(); err != nil {
		c.log.WithError(err).Warn("Handshake failed")
		_ = c.writeNow(api.MsgError, api.ErrorPayload{Message: err.Error()})
		_ = c.Conn.Close()
		return
	}

	go c.forward()
	go c.writePump()
	c.readPump()
}

func (c *Client) handshake() error {
	// 1. Первое сообщение обязано быть JOIN
	var msg api.ClientMessage
	if err := c.Conn.ReadJSON(&msg); err != nil {
		return err
	}
	if msg.Type != api.MsgJoin {
		return errors.New("expected JOIN")
	}
	var join api.JoinPayload
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &join); err != nil {
			return err
		}
	}

	if err := version.CheckProtocol(join.Protocol); err != nil {
		return err
	}

	// 2. Поиск матча
	welcome, backlog, ch, err := c.join(join)
	if err != nil {
		return err
	}
	c.camp = types.CampID(welcome.CampID)
	c.updates = ch
	c.log = c.log.WithFields(logrus.Fields{"match": welcome.MatchID, "camp": c.camp})

	// 3. WELCOME + все уже разосланные кадры
	if err := c.writeNow(api.MsgWelcome, welcome); err != nil {
		c.match.Leave(c.camp, ch)
		return err
	}
	for _, frame := range backlog {
		if err := c.writeNow(api.MsgFrame, frame); err != nil {
			c.match.Leave(c.camp, ch)
			return err
		}
	}
	c.log.WithField("backlog", len(backlog)).Info("Client logged in")
	return nil
}

func (c *Client) join(p api.JoinPayload) (api.WelcomePayload, []api.FrameMessage, chan api.ServerMessage, error) {
	if p.Match != "" {
		m, err := c.Lobby.Get(p.Match)
		if err != nil {
			return api.WelcomePayload{}, nil, nil, err
		}
		c.match = m
		return m.Join(p.Name)
	}

	for attempt := 0; attempt < 2; attempt++ {
		m := c.Lobby.Open()
		welcome, backlog, ch, err := m.Join(p.Name)
		if errors.Is(err, ErrMatchFull) {
			c.Lobby.Rotate(m)
			continue
		}
		c.match = m
		return welcome, backlog, ch, err
	}
	return api.WelcomePayload{}, nil, nil, ErrMatchFull
}

// forward пересылает кадры из Hub в writePump. Если writePump уже вышел,
// пересылка прекращается, а не висит на заполненном Send.
func (c *Client) forward() {
	for msg := range c.updates {
		select {
		case c.Send <- msg:
		case <-c.done:
			return
		}
	}
	close(c.Send)
}

// readPump читает INPUT и CONFIRM от клиента
func (c *Client) readPump() {
	defer func() {
		c.match.Leave(c.camp, c.updates)
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection")
		}
		c.log.Info("Client disconnected")
	}()

	for {
		var msg api.ClientMessage
		if err := c.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.log.Errorf("WS Error: %v", err)
			}
			return
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg api.ClientMessage) {
	switch msg.Type {
	case api.MsgInput:
		var in api.Input
		if err := json.Unmarshal(msg.Payload, &in); err != nil {
			c.log.WithError(err).Warn("Bad INPUT")
			return
		}
		// Лагерь берётся из сессии, а не из сообщения
		if err := c.match.SubmitInput(c.camp, in); err != nil {
			c.log.WithError(err).Warn("INPUT refused")
		}

	case api.MsgConfirm:
		var p api.ConfirmPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.log.WithError(err).Warn("Bad CONFIRM")
			return
		}
		_ = c.match.Confirm(c.camp, p.Frame)

	default:
		c.log.WithField("type", msg.Type).Debug("Unknown message type")
	}
}

// writePump отправляет данные клиенту + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		close(c.done)
		ticker.Stop()
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.Conn.WriteJSON(message); err != nil {
				c.log.WithError(err).Debug("write json message failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}

// writeNow пишет сообщение напрямую, до запуска writePump.
func (c *Client) writeNow(msgType string, payload any) error {
	msg, err := api.NewServerMessage(msgType, payload)
	if err != nil {
		return err
	}
	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.Conn.WriteJSON(msg)
}

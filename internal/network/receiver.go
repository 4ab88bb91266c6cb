package network

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"

	"github.com/sirupsen/logrus"
)

// FrameSink — куда приёмник кладёт разобранные кадры (engine.Instance, engine.FrameBuffer).
type FrameSink interface {
	Push(frame api.FrameMessage) error
}

// DecodeFrame разбирает сырой кадр: схема конверта, затем JSON.
// Содержимое отдельных команд здесь не проверяется — это делает
// таблица команд, пропуская битые по одной.
func DecodeFrame(raw []byte) (api.FrameMessage, error) {
	if err := api.ValidateFrameJSON(raw); err != nil {
		return api.FrameMessage{}, err
	}
	var frame api.FrameMessage
	if err := json.Unmarshal(raw, &frame); err != nil {
		return api.FrameMessage{}, fmt.Errorf("frame: %w", err)
	}
	return frame, nil
}

// Receiver — входная точка кадров из транспорта.
type Receiver struct {
	sink FrameSink
	log  *logrus.Entry
}

func NewReceiver(sink FrameSink) *Receiver {
	return &Receiver{sink: sink, log: logger.Log.WithField("component", "receiver")}
}

// Receive разбирает кадр и кладёт его в буфер.
// Повторно присланный кадр игнорируется; кадр уже исполненного тика —
// рассинхронизация, она возвращается вызывающему.
func (r *Receiver) Receive(raw []byte) error {
	frame, err := DecodeFrame(raw)
	if err != nil {
		r.log.WithError(err).Warn("Dropping unparseable frame")
		return err
	}
	return r.Accept(frame)
}

// Accept — то же для уже разобранного кадра.
func (r *Receiver) Accept(frame api.FrameMessage) error {
	err := r.sink.Push(frame)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, engine.ErrDuplicateFrame):
		r.log.WithField("frame", frame.Frame).Debug("Duplicate frame ignored")
		return nil
	default:
		r.log.WithField("frame", frame.Frame).WithError(err).Error("Frame rejected")
		return err
	}
}

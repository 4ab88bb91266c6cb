package storage

import (
	"context"
	"encoding/hex"
	"time"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Archive пишет реплей на диск и регистрирует его в индексе.
// Index может быть nil — тогда только файл.
type Archive struct {
	Replays *ReplayService
	Index   *Index
}

func (a *Archive) SaveReplay(session *domain.ReplaySession) error {
	path, err := a.Replays.Save(session)
	if err != nil {
		return err
	}

	matchID := uuid.UUID(session.MatchID).String()
	logger.Log.WithFields(logrus.Fields{
		"match":  matchID,
		"frames": len(session.Frames),
		"path":   path,
	}).Info("Replay saved")

	if a.Index == nil {
		return nil
	}
	return a.Index.Record(context.Background(), ReplayEntry{
		MatchID:     matchID,
		Path:        path,
		Seed:        session.Seed,
		TickRate:    session.TickRate,
		Frames:      len(session.Frames),
		FinalTick:   int64(session.FinalTick),
		FinalDigest: hex.EncodeToString(session.FinalDigest[:]),
		RecordedAt:  time.Unix(session.Timestamp, 0),
	})
}

package game

import (
	"encoding/hex"
	"fmt"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/engine"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"

	"github.com/sirupsen/logrus"
)

// VerifyResult — итог прогона записи.
type VerifyResult struct {
	Ticks       types.Tick
	FinalDigest string

	// Recorded сравнивался ли дайджест с записанным (нулевой в файле — не записан).
	Recorded bool
}

// Verify прогоняет запись на двух независимых мирах бок о бок и сверяет
// дайджесты после каждого тика, а в конце — с записанным дайджестом.
// Любое расхождение возвращается как *engine.DesyncError.
func Verify(session *domain.ReplaySession) (VerifyResult, error) {
	cfg := engine.WorldConfig{ID: "replay-a", Seed: session.Seed, TickRate: int(session.TickRate)}
	a := NewInstance(cfg, nil, domain.SourceReplay)
	cfg.ID = "replay-b"
	b := NewInstance(cfg, nil, domain.SourceReplay)

	log := logger.Log.WithFields(logrus.Fields{"seed": session.Seed, "frames": len(session.Frames)})
	log.Info("Verifying replay")

	var res VerifyResult
	for _, frame := range session.Frames {
		for _, inst := range []*engine.Instance{a, b} {
			if err := inst.Push(frame); err != nil {
				return res, err
			}
			if err := inst.Step(); err != nil {
				return res, err
			}
		}

		da, err := a.World().Digest()
		if err != nil {
			return res, err
		}
		db, err := b.World().Digest()
		if err != nil {
			return res, err
		}
		tick := a.World().CurrentTick()
		if da != db {
			return res, &engine.DesyncError{Expected: tick, Got: tick, Reason: fmt.Sprintf("digest %s != %s", da, db)}
		}
		res.Ticks = tick
		res.FinalDigest = da
	}

	if session.FinalDigest != [32]byte{} {
		res.Recorded = true
		if want := hex.EncodeToString(session.FinalDigest[:]); want != res.FinalDigest {
			return res, &engine.DesyncError{
				Expected: session.FinalTick,
				Got:      res.Ticks,
				Reason:   fmt.Sprintf("final digest %s, recorded %s", res.FinalDigest, want),
			}
		}
	}

	log.WithFields(logrus.Fields{"tick": res.Ticks, "digest": res.FinalDigest}).Info("Replay verified")
	return res, nil
}

package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/logger"

	"github.com/google/uuid"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func sampleSession() *domain.ReplaySession {
	s := &domain.ReplaySession{
		MatchID:   uuid.New(),
		Seed:      42,
		TickRate:  20,
		Timestamp: 1760000000,
	}
	s.FinalDigest[0], s.FinalDigest[31] = 0xAB, 0xCD
	for tick := int64(1); tick <= 50; tick++ {
		f := api.FrameMessage{Frame: tick, Data: []api.CampInputs{}}
		if tick%7 == 0 {
			f.Data = append(f.Data, api.CampInputs{CampID: int32(tick % 3), Inputs: []api.Input{
				{CommandType: 1, Command: json.RawMessage(`{"unitType":2,"x":3,"y":4}`)},
			}})
		}
		s.Append(f)
	}
	return s
}

func TestReplay_RoundTrip(t *testing.T) {
	svc, err := NewReplayService(filepath.Join(t.TempDir(), "replays"))
	if err != nil {
		t.Fatal(err)
	}
	orig := sampleSession()

	path, err := svc.Save(orig)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := svc.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got.MatchID != orig.MatchID || got.Seed != 42 || got.TickRate != 20 || got.FinalTick != 50 || got.FinalDigest != orig.FinalDigest {
		t.Errorf("header mismatch: %+v", got)
	}
	if len(got.Frames) != len(orig.Frames) {
		t.Fatalf("frames: got %d, want %d", len(got.Frames), len(orig.Frames))
	}
	a, _ := json.Marshal(orig.Frames)
	b, _ := json.Marshal(got.Frames)
	if !bytes.Equal(a, b) {
		t.Error("frame contents changed after round trip")
	}
}

func TestReplay_RejectsForeignFile(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("CDRP")
	buf.Write(make([]byte, 200))

	if _, err := readBinary(&buf); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestReplay_TruncatedBody(t *testing.T) {
	var buf bytes.Buffer
	if err := writeBinary(&buf, sampleSession()); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	if _, err := readBinary(bytes.NewReader(raw[:len(raw)-20])); err == nil {
		t.Error("expected error for truncated replay")
	}
}

func TestIndex_RecordListFind(t *testing.T) {
	dir := t.TempDir()
	ix, err := OpenIndex(filepath.Join(dir, "index", "replays.sqlite"))
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer ix.Close()
	ctx := context.Background()

	older := ReplayEntry{MatchID: "a", Path: "a.ra2r", Seed: 1, TickRate: 20, Frames: 10, FinalTick: 10, FinalDigest: "00", RecordedAt: time.Unix(100, 0)}
	newer := ReplayEntry{MatchID: "b", Path: "b.ra2r", Seed: 2, TickRate: 30, Frames: 5, FinalTick: 5, FinalDigest: "ff", RecordedAt: time.Unix(200, 0)}
	for _, e := range []ReplayEntry{older, newer} {
		if err := ix.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	list, err := ix.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].MatchID != "b" || list[1].MatchID != "a" {
		t.Errorf("unexpected order: %+v", list)
	}

	got, err := ix.Find(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if got.TickRate != 30 || got.FinalDigest != "ff" || !got.RecordedAt.Equal(newer.RecordedAt) {
		t.Errorf("unexpected entry: %+v", got)
	}

	if _, err := ix.Find(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestArchive_SaveReplay(t *testing.T) {
	dir := t.TempDir()
	svc, _ := NewReplayService(dir)
	ix, err := OpenIndex(filepath.Join(dir, "index.sqlite"))
	if err != nil {
		t.Fatal(err)
	}
	defer ix.Close()

	session := sampleSession()
	arch := &Archive{Replays: svc, Index: ix}
	if err := arch.SaveReplay(session); err != nil {
		t.Fatal(err)
	}

	e, err := ix.Find(context.Background(), uuid.UUID(session.MatchID).String())
	if err != nil {
		t.Fatal(err)
	}
	if e.Frames != 50 || e.Seed != 42 {
		t.Errorf("unexpected entry: %+v", e)
	}
	if _, err := LoadFile(e.Path); err != nil {
		t.Errorf("indexed path not loadable: %v", err)
	}
}

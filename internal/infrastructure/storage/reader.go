package storage

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/core/types"
	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"
	"github.com/ZiglerOllydbg/ra2-sub003/pkg/api"

	"github.com/klauspost/compress/zstd"
)

var ErrInvalidMagic = errors.New("storage: invalid replay magic")

func (s *ReplayService) Load(path string) (*domain.ReplaySession, error) {
	return LoadFile(path)
}

// LoadFile читает реплей с диска.
func LoadFile(path string) (*domain.ReplaySession, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readBinary(f)
}

// ReadHeader читает только несжатый заголовок.
func ReadHeader(r io.Reader) (ReplayFileHeader, error) {
	var header ReplayFileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return header, fmt.Errorf("failed to read header: %w", err)
	}

	// Валидация
	if string(header.Magic[:]) != MagicHeader {
		return header, ErrInvalidMagic
	}
	if header.Version != Version1 {
		return header, fmt.Errorf("unsupported version: %d (expected %d)", header.Version, Version1)
	}
	return header, nil
}

func readBinary(r io.Reader) (*domain.ReplaySession, error) {
	// 1. Читаем заголовок целиком
	header, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}

	session := &domain.ReplaySession{
		MatchID:     header.MatchID,
		Seed:        header.Seed,
		TickRate:    header.TickRate,
		Timestamp:   header.Timestamp,
		FinalTick:   types.Tick(header.FinalTick),
		FinalDigest: header.Digest,
		Frames:      make([]api.FrameMessage, 0, header.FrameCount),
	}

	// 2. Читаем кадры
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	for i := 0; i < int(header.FrameCount); i++ {
		var fh FrameHeader
		if err := binary.Read(dec, binary.LittleEndian, &fh); err != nil {
			return nil, fmt.Errorf("frame %d header: %w", i, err)
		}
		if fh.Len > maxFrameSize {
			return nil, fmt.Errorf("frame %d too large: %d", fh.Tick, fh.Len)
		}

		body := make([]byte, fh.Len)
		if _, err := io.ReadFull(dec, body); err != nil {
			return nil, fmt.Errorf("frame %d body: %w", fh.Tick, err)
		}

		var frame api.FrameMessage
		if err := json.Unmarshal(body, &frame); err != nil {
			return nil, fmt.Errorf("frame %d: %w", fh.Tick, err)
		}
		if frame.Frame != fh.Tick {
			return nil, fmt.Errorf("frame header says tick %d, body says %d", fh.Tick, frame.Frame)
		}
		session.Frames = append(session.Frames, frame)
	}

	return session, nil
}

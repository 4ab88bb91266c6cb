package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ZiglerOllydbg/ra2-sub003/internal/domain"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
)

const (
	MagicHeader string = `RA2R` // 4 байта
	Version1    uint32 = 1

	maxFrameSize = 16 << 20
)

// ReplayFileHeader — это точное представление заголовка файла в памяти.
// binary.Write умеет писать это целиком, так как тут нет слайсов и строк, только массивы и числа.
// Заголовок не сжат: индекс и утилиты читают его, не распаковывая тело.
type ReplayFileHeader struct {
	Magic      [4]byte  // 4 байта
	Version    uint32   // 4 байта
	Seed       int64    // 8 байт
	Timestamp  int64    // 8 байт
	TickRate   int32    // 4 байта
	FrameCount int32    // 4 байта
	FinalTick  int64    // 8 байт
	MatchID    [16]byte // 16 байт, UUID
	Digest     [32]byte // 32 байта, SHA-256 хранилища после FinalTick
}

// FrameHeader — заголовок каждой записи кадра в сжатом теле.
type FrameHeader struct {
	Tick int64  // 8
	Len  uint32 // 4
}

type ReplayService struct {
	SaveDir string
}

func NewReplayService(dir string) (*ReplayService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &ReplayService{SaveDir: dir}, nil
}

// Save пишет реплей в SaveDir и возвращает путь к файлу.
func (s *ReplayService) Save(session *domain.ReplaySession) (string, error) {
	filename := fmt.Sprintf("replay_%s_%d.ra2r", uuid.UUID(session.MatchID), session.Timestamp)
	path := filepath.Join(s.SaveDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := writeBinary(f, session); err != nil {
		_ = f.Close()
		return "", err
	}
	return path, f.Close()
}

func writeBinary(w io.Writer, s *domain.ReplaySession) error {
	// 1. Подготавливаем и пишем ГЛОБАЛЬНЫЙ ЗАГОЛОВОК
	header := ReplayFileHeader{
		Version:    Version1,
		Seed:       s.Seed,
		Timestamp:  s.Timestamp,
		TickRate:   s.TickRate,
		FrameCount: int32(len(s.Frames)),
		FinalTick:  int64(s.FinalTick),
		MatchID:    s.MatchID,
		Digest:     s.FinalDigest,
	}
	copy(header.Magic[:], MagicHeader) // Копируем строку в массив [4]byte

	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// 2. Кадры — в сжатом потоке
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}

	for _, frame := range s.Frames {
		body, err := json.Marshal(frame)
		if err != nil {
			_ = enc.Close()
			return fmt.Errorf("frame %d: %w", frame.Frame, err)
		}
		if len(body) > maxFrameSize {
			_ = enc.Close()
			return fmt.Errorf("frame %d too large: %d", frame.Frame, len(body))
		}

		fh := FrameHeader{Tick: frame.Frame, Len: uint32(len(body))}
		if err := binary.Write(enc, binary.LittleEndian, &fh); err != nil {
			_ = enc.Close()
			return err
		}
		if _, err := enc.Write(body); err != nil {
			_ = enc.Close()
			return err
		}
	}

	return enc.Close()
}

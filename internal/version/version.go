package version

import (
	"errors"
	"fmt"
	"time"
)

var (
	BuildDate   string // YYYY-MM-DD (UTC)
	BuildCommit string
	BuildBranch string
	BuildCI     string
)

// Protocol — версия протокола кадров. Клиент и сервер с разными версиями
// не должны играть вместе: рассинхронизация гарантирована.
const Protocol = 1

var ErrProtocolMismatch = errors.New("protocol version mismatch")

// CheckProtocol сверяет версию протокола собеседника со своей.
func CheckProtocol(peer int) error {
	if peer != Protocol {
		return fmt.Errorf("%w: peer speaks %d, we speak %d", ErrProtocolMismatch, peer, Protocol)
	}
	return nil
}

// buildEpoch — день нулевой сборки.
var buildEpoch = time.Date(
	2025, time.December, 4,
	0, 0, 0, 0,
	time.UTC,
)

// VersionInfo describes the build metadata in structured form.
type VersionInfo struct {
	Protocol   int
	BuildID    int
	BuildDate  string
	Commit     string
	Branch     string
	CI         string
	Calculated bool
	Error      string
}

func CalculateBuildID() (int, error) {
	if BuildDate == "" {
		return 0, fmt.Errorf("BuildDate is empty")
	}

	t, err := time.ParseInLocation("2006-01-02", BuildDate, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid BuildDate %q: %w", BuildDate, err)
	}

	if t.Before(buildEpoch) {
		return 0, fmt.Errorf("BuildDate %s is before epoch", BuildDate)
	}

	// Using hours avoids DST issues; epoch and build date are both UTC.
	days := int(t.Sub(buildEpoch).Hours() / 24)
	return days, nil
}

// Info returns structured version information.
// Safe to call at any time.
func Info() VersionInfo {
	id, err := CalculateBuildID()

	info := VersionInfo{
		Protocol:  Protocol,
		BuildDate: BuildDate,
		Commit:    BuildCommit,
		Branch:    BuildBranch,
		CI:        BuildCI,
	}

	if err != nil {
		info.Error = err.Error()
		return info
	}

	info.BuildID = id
	info.Calculated = true
	return info
}

// String returns a human-readable build string.
func String() string {
	info := Info()

	if !info.Calculated {
		return fmt.Sprintf("Build unknown (%s) protocol[%d]", info.Error, info.Protocol)
	}

	return fmt.Sprintf(
		"Build %d (%s) protocol[%d] commit[%s] branch[%s] ci[%s]",
		info.BuildID,
		info.BuildDate,
		info.Protocol,
		coalesce(info.Commit, "unknown"),
		coalesce(info.Branch, "unknown"),
		coalesce(info.CI, "local"),
	)
}

func coalesce(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

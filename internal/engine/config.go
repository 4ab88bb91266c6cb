package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config хранит параметры запуска сервера и матчей
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Match   MatchConfig   `yaml:"match"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type MatchConfig struct {
	TickRate int `yaml:"tick_rate"`
	// Seed - мастер-зерно RNG мира. 0 - хост выбирает зерно при создании
	// матча и записывает его в реплей.
	Seed         int64 `yaml:"seed"`
	Camps        int   `yaml:"camps"`
	StartCredits int64 `yaml:"start_credits"`
	Bots         int   `yaml:"bots"`
}

type StorageConfig struct {
	ReplayDir string `yaml:"replay_dir"` // пусто - реплеи не пишутся
	IndexDB   string `yaml:"index_db"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NewConfig создает конфиг по умолчанию
func NewConfig() Config {
	return Config{
		Server: ServerConfig{Port: "8080"},
		Match: MatchConfig{
			TickRate:     20,
			Seed:         0,
			Camps:        2,
			StartCredits: 5000,
			Bots:         0,
		},
		Storage: StorageConfig{
			ReplayDir: "replays",
			IndexDB:   "replays/index.sqlite",
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// LoadConfig читает YAML поверх значений по умолчанию:
// отсутствующие в файле ключи сохраняют дефолт.
func LoadConfig(path string) (Config, error) {
	cfg := NewConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Match.Camps < 1 {
		return fmt.Errorf("match.camps must be positive, got %d", c.Match.Camps)
	}
	if c.Match.Bots < 0 || c.Match.Bots > c.Match.Camps {
		return fmt.Errorf("match.bots must be in [0, %d], got %d", c.Match.Camps, c.Match.Bots)
	}
	if c.Match.StartCredits < 0 {
		return fmt.Errorf("match.start_credits cannot be negative")
	}
	return nil
}

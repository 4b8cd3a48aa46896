package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	Simulation  SimulationConfig `yaml:"simulation"`
	Storage     StorageConfig    `yaml:"storage"`
	EventBus    EventBusConfig   `yaml:"eventbus"`
	Server      ServerConfig     `yaml:"server"`
	Telemetry   TelemetryConfig  `yaml:"telemetry"`
	Logging     LoggingConfig    `yaml:"logging"`
	CatalogPath string           `yaml:"catalog_path"`
}

type SimulationConfig struct {
	TickRate    int     `yaml:"tick_rate"`
	Seed        int64   `yaml:"seed"`
	LevelLength float64 `yaml:"level_length"`
	MaxTicks    int     `yaml:"max_ticks"`
}

// StorageConfig выбирает backend SaveStore и его параметры.
// Backend: memory | file | badger | redis | maria | mongo
type StorageConfig struct {
	Backend  string `yaml:"backend"`
	Compress bool   `yaml:"compress"`

	FilePath   string `yaml:"file_path"`
	BadgerPath string `yaml:"badger_path"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	RedisPrefix   string `yaml:"redis_prefix"`

	MariaDSN string `yaml:"maria_dsn"`

	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`

	// Идентификатор слота сохранения (профиль игрока)
	Slot string `yaml:"slot"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	Endpoint    string `yaml:"endpoint"`
}

type LoggingConfig struct {
	Dir          string `yaml:"dir"`
	ConsoleLevel string `yaml:"console_level"`
	FileLevel    string `yaml:"file_level"`
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "GAME_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "GAME_METRICS_PORT", 2112)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Default возвращает конфигурацию, с которой запускается игра без файла.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Simulation.TickRate <= 0 {
		c.Simulation.TickRate = 60
	}
	if c.Simulation.LevelLength <= 0 {
		c.Simulation.LevelLength = 3000
	}
	if c.Simulation.MaxTicks <= 0 {
		c.Simulation.MaxTicks = 60 * 60 * 5
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "memory"
	}
	if c.Storage.FilePath == "" {
		c.Storage.FilePath = "saves/save.json"
	}
	if c.Storage.BadgerPath == "" {
		c.Storage.BadgerPath = "saves/badger"
	}
	if c.Storage.RedisPrefix == "" {
		c.Storage.RedisPrefix = "roguelite:"
	}
	if c.Storage.MongoDatabase == "" {
		c.Storage.MongoDatabase = "roguelite"
	}
	if c.Storage.MongoCollection == "" {
		c.Storage.MongoCollection = "saves"
	}
	if c.Storage.Slot == "" {
		c.Storage.Slot = "default"
	}
	if c.EventBus.Stream == "" {
		c.EventBus.Stream = "GAME_EVENTS"
	}
	if c.EventBus.Retention <= 0 {
		c.EventBus.Retention = 24
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "roguelite-hub"
	}
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = "localhost:4318"
	}
	if c.Logging.ConsoleLevel == "" {
		c.Logging.ConsoleLevel = "INFO"
	}
	if c.Logging.FileLevel == "" {
		c.Logging.FileLevel = "TRACE"
	}
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV GAME_CONFIG или возвращает дефолты.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("GAME_CONFIG")
		if path == "" {
			return Default(), nil // конфиг не задан: использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфига %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("разбор конфига %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

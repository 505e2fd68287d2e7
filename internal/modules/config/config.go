package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
	strategyAPIURLENV = "STRATEGY_API_URL"
	strategySinkENV   = "STRATEGY_SINK"
)

const (
	SinkHTTP     = "http"
	SinkPostgres = "postgres"
)

// Config ...
type Config struct {
	Telegram struct {
		Token string `yaml:"token"`
	} `yaml:"telegram"`
	DB      string `yaml:"db_dsn"`
	Service struct {
		Host      string `yaml:"host"`
		AdminPort int    `yaml:"admin_port"`
	} `yaml:"service"`

	// Внешний API стратегий (create/update + справочник инструментов)
	StrategyAPI struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"strategy_api"`

	// Куда отправлять сохранённые стратегии: http | postgres
	Storage struct {
		Sink   string `yaml:"sink"`
		UserID int64  `yaml:"user_id"` // владелец записей при записи напрямую в БД
	} `yaml:"storage"`

	Tracing struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
	} `yaml:"tracing"`

	Log struct {
		Debug bool   `yaml:"debug"`
		Dir   string `yaml:"dir"`
	} `yaml:"log"`

	// Дефолты метаданных новой стратегии
	DefaultTimeframe          string  `yaml:"default_timeframe"`
	DefaultLeverage           float64 `yaml:"default_leverage"`
	DefaultMonitorIntervalSec int     `yaml:"default_monitor_interval_sec"`
}

func defaults() Config {
	var c Config
	c.Service.Host = "0.0.0.0"
	c.Service.AdminPort = 8080
	c.StrategyAPI.BaseURL = getenvDefault(strategyAPIURLENV, "http://127.0.0.1:8000")
	c.StrategyAPI.Timeout = durationFromEnv("STRATEGY_API_TIMEOUT", "120s")
	c.Storage.Sink = SinkHTTP
	c.Storage.UserID = int64(intFromEnv("STRATEGY_USER_ID", 1))
	c.Tracing.Host = "localhost"
	c.Tracing.Port = 6831
	c.Log.Debug = boolFromEnv("LOG_DEBUG", false)

	c.DefaultTimeframe = getenvDefault("TIMEFRAME", "1H")
	c.DefaultLeverage = floatFromEnv("LEVERAGE", 1)
	c.DefaultMonitorIntervalSec = intFromEnv("MONITOR_INTERVAL_SEC", 60)
	return c
}

// NewConfig читает configs/$CONFIG_FILE поверх дефолтов и применяет переменные окружения.
// Переменные из .env, если он есть, не перекрывают уже заданные в окружении.
func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if errors.Is(err, os.ErrNotExist) {
		cfg := defaults()
		applyEnv(&cfg)
		return &cfg, cfg.Validate()
	}
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	return NewConfigFromReader(file)
}

// NewConfigFromReader: то же, что NewConfig, но из произвольного источника.
func NewConfigFromReader(r io.Reader) (*Config, error) {
	config := defaults()
	if err := yaml.NewDecoder(r).Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode config file: %w", err)
	}
	applyEnv(&config)
	return &config, config.Validate()
}

func applyEnv(config *Config) {
	if token := os.Getenv(tokenTelegramENV); token != "" {
		config.Telegram.Token = token
	}
	if dsn := os.Getenv(databaseDSN); dsn != "" {
		config.DB = dsn
	}
	if sink := os.Getenv(strategySinkENV); sink != "" {
		config.Storage.Sink = sink
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Sink {
	case SinkHTTP:
		if c.StrategyAPI.BaseURL == "" {
			return fmt.Errorf("strategy_api.base_url is required for the http sink")
		}
	case SinkPostgres:
		if c.DB == "" {
			return fmt.Errorf("db_dsn is required for the postgres sink")
		}
	default:
		return fmt.Errorf("unknown storage.sink %q", c.Storage.Sink)
	}
	return nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "1" || v == "true" || v == "TRUE" {
			return true
		}
		if v == "0" || v == "false" || v == "FALSE" {
			return false
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}

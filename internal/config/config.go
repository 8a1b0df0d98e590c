package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Bot      BotConfig      `toml:"bot"`
	Schedule ScheduleConfig `toml:"schedule"`
	Admin    AdminConfig    `toml:"admin"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // seconds
	WriteTimeout    int `toml:"write_timeout"`    // seconds
	IdleTimeout     int `toml:"idle_timeout"`     // seconds
	ShutdownTimeout int `toml:"shutdown_timeout"` // seconds
}

// DatabaseConfig настройки подключения к postgres
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // seconds
}

// DSN собирает строку подключения
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки prometheus-метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// BotConfig настройки клиента Bot API
type BotConfig struct {
	APIURL  string `toml:"api_url"` // база без токена, например https://api.telegram.org
	Token   string `toml:"token"`
	Timeout int    `toml:"timeout"` // seconds
}

// ScheduleConfig настройки расписания дня
type ScheduleConfig struct {
	Timezone        string `toml:"timezone"`
	OpenHour        int    `toml:"open_hour"`
	CloseHour       int    `toml:"close_hour"`
	DefaultCapacity int    `toml:"default_capacity"`
	AnnounceFrom    int    `toml:"announce_from"`
	AnnounceUntil   int    `toml:"announce_until"`
}

// AdminConfig статический список привилегированных пользователей
type AdminConfig struct {
	UserIDs []int64 `toml:"user_ids"`
}

// IsAdmin возвращает true, если пользователь в списке администраторов
func (a AdminConfig) IsAdmin(userID int64) bool {
	for _, id := range a.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Load читает конфигурацию из toml-файла
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}

	applyDefaults(&cfg)

	if cfg.Bot.Token == "" {
		return nil, fmt.Errorf("config: bot.token is required")
	}
	if cfg.Schedule.OpenHour < 0 || cfg.Schedule.OpenHour > 23 ||
		cfg.Schedule.CloseHour < 0 || cfg.Schedule.CloseHour > 23 ||
		cfg.Schedule.OpenHour > cfg.Schedule.CloseHour {
		return nil, fmt.Errorf("config: invalid schedule hours [%d, %d]",
			cfg.Schedule.OpenHour, cfg.Schedule.CloseHour)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}
	if cfg.Bot.APIURL == "" {
		cfg.Bot.APIURL = "https://api.telegram.org"
	}
	if cfg.Bot.Timeout == 0 {
		cfg.Bot.Timeout = 10
	}
	if cfg.Schedule.Timezone == "" {
		cfg.Schedule.Timezone = "Asia/Taipei"
	}
	if cfg.Schedule.OpenHour == 0 && cfg.Schedule.CloseHour == 0 {
		cfg.Schedule.OpenHour = 13
		cfg.Schedule.CloseHour = 22
	}
	if cfg.Schedule.DefaultCapacity == 0 {
		cfg.Schedule.DefaultCapacity = 3
	}
	if cfg.Schedule.AnnounceFrom == 0 && cfg.Schedule.AnnounceUntil == 0 {
		cfg.Schedule.AnnounceFrom = 12
		cfg.Schedule.AnnounceUntil = 22
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "xfwh-bot"
	}
}

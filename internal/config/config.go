// Пакет config — загрузка и валидация конфигурации сервиса отчётов RMS
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации сервиса.
type Config struct {
	// Порт HTTP-сервера
	Port int `env:"RMS_PORT" env-default:"8080"`
	// Корень статики: uploads/, reports/, assets/
	StaticDir string `env:"RMS_STATIC_DIR" env-default:"./static"`
	// Стратегия разрешения ссылок на ассеты (file, http)
	AssetMode string `env:"RMS_ASSET_MODE" env-default:"file"`
	// Фиксированный origin для режима http. Без него origin берётся из
	// заголовка Host запроса; при доступе извне задавать обязательно.
	PublicBaseURL string `env:"RMS_PUBLIC_BASE_URL"`
	// Максимальный размер multipart-запроса в байтах
	MaxUploadSize int64 `env:"RMS_MAX_UPLOAD_SIZE" env-default:"104857600"`
	// Префикс идентификатора отчёта
	ReferencePrefix string `env:"RMS_REFERENCE_PREFIX" env-default:"RMS"`
	// Предел длины краткого описания в таблице
	SummaryLimit int `env:"RMS_SUMMARY_LIMIT" env-default:"120"`

	// Путь к локальному Chrome (пусто — выбор launcher)
	ChromeBin string `env:"RMS_CHROME_BIN"`
	// DevTools websocket внешнего Chrome
	ChromeURL string `env:"RMS_CHROME_URL"`
	// Запуск Chrome с --no-sandbox
	ChromeNoSandbox bool `env:"RMS_CHROME_NO_SANDBOX" env-default:"false"`
	// Таймаут печати одного документа
	RenderTimeout time.Duration `env:"RMS_RENDER_TIMEOUT" env-default:"60s"`
	// Максимум одновременно печатаемых документов
	RenderConcurrency int `env:"RMS_RENDER_CONCURRENCY" env-default:"2"`

	// Путь к TLS сертификату
	TLSCert string `env:"RMS_TLS_CERT"`
	// Путь к TLS приватному ключу
	TLSKey string `env:"RMS_TLS_KEY"`

	// Уровень логирования (debug, info, warn, error)
	LogLevelName string `env:"RMS_LOG_LEVEL" env-default:"info"`
	// Формат логов (json, text)
	LogFormat string `env:"RMS_LOG_FORMAT" env-default:"json"`
	// Уровень логирования после разбора LogLevelName
	LogLevel slog.Level

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration `env:"RMS_SHUTDOWN_TIMEOUT" env-default:"10s"`
	// Таймауты HTTP-сервера
	ReadTimeout  time.Duration `env:"RMS_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout time.Duration `env:"RMS_WRITE_TIMEOUT" env-default:"120s"`
	IdleTimeout  time.Duration `env:"RMS_IDLE_TIMEOUT" env-default:"120s"`
}

// Load загружает конфигурацию из переменных окружения, валидирует
// значения и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения окружения: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("RMS_PORT: значение %d вне допустимого диапазона 1-65535", c.Port)
	}

	if strings.TrimSpace(c.StaticDir) == "" {
		return fmt.Errorf("RMS_STATIC_DIR: значение не может быть пустым")
	}

	switch c.AssetMode {
	case "file", "http":
	default:
		return fmt.Errorf("RMS_ASSET_MODE: недопустимое значение %q, допустимые: file, http", c.AssetMode)
	}

	if c.PublicBaseURL != "" {
		u, err := url.Parse(c.PublicBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("RMS_PUBLIC_BASE_URL: некорректный origin %q", c.PublicBaseURL)
		}
	}

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("RMS_MAX_UPLOAD_SIZE: значение должно быть положительным")
	}

	if c.ReferencePrefix == "" || strings.ContainsAny(c.ReferencePrefix, " -/\\") {
		return fmt.Errorf("RMS_REFERENCE_PREFIX: недопустимое значение %q", c.ReferencePrefix)
	}

	if c.SummaryLimit <= 0 {
		return fmt.Errorf("RMS_SUMMARY_LIMIT: значение должно быть положительным")
	}

	if c.RenderTimeout <= 0 {
		return fmt.Errorf("RMS_RENDER_TIMEOUT: значение должно быть положительным")
	}
	if c.RenderConcurrency < 1 || c.RenderConcurrency > 64 {
		return fmt.Errorf("RMS_RENDER_CONCURRENCY: значение %d вне диапазона 1-64", c.RenderConcurrency)
	}

	// TLS — либо оба параметра, либо ни одного
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return fmt.Errorf("RMS_TLS_CERT и RMS_TLS_KEY задаются только вместе")
	}

	level, err := parseLogLevel(c.LogLevelName)
	if err != nil {
		return fmt.Errorf("RMS_LOG_LEVEL: %w", err)
	}
	c.LogLevel = level

	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("RMS_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", c.LogFormat)
	}

	for name, d := range map[string]time.Duration{
		"RMS_SHUTDOWN_TIMEOUT": c.ShutdownTimeout,
		"RMS_READ_TIMEOUT":     c.ReadTimeout,
		"RMS_WRITE_TIMEOUT":    c.WriteTimeout,
		"RMS_IDLE_TIMEOUT":     c.IdleTimeout,
	} {
		if d <= 0 {
			return fmt.Errorf("%s: значение должно быть положительным", name)
		}
	}

	return nil
}

// TLSEnabled возвращает true, если заданы сертификат и ключ.
func (c *Config) TLSEnabled() bool {
	return c.TLSCert != "" && c.TLSKey != ""
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

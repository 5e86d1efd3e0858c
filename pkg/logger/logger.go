// Package logger - глобальный структурированный логгер на slog с ротацией файлов
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log - глобальный логгер. До инициализации пишет в stderr на уровне info
var Log = slog.New(slog.NewTextHandler(os.Stderr, nil))

// Config конфигурация логгера
type Config struct {
	Level      string
	Format     string // json, text
	Output     string // stdout, stderr, file
	FilePath   string
	MaxSize    int // MB
	MaxBackups int
	MaxAge     int // days
	Compress   bool

	// Writer перекрывает Output, если задан
	Writer io.Writer
}

// Init инициализирует логгер
func Init(level string) {
	InitWithConfig(Config{
		Level:  level,
		Format: "text",
		Output: "stderr",
	})
}

// ParseLevel переводит строковый уровень в slog.Level
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InitWithConfig инициализирует логгер с полной конфигурацией
func InitWithConfig(cfg Config) {
	Log = New(cfg)
}

// New создаёт логгер, не трогая глобальный
func New(cfg Config) *slog.Logger {
	lvl := ParseLevel(cfg.Level)

	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(writerFor(cfg), opts)
	default:
		handler = slog.NewTextHandler(writerFor(cfg), opts)
	}

	return slog.New(handler)
}

func writerFor(cfg Config) io.Writer {
	if cfg.Writer != nil {
		return cfg.Writer
	}

	switch cfg.Output {
	case "stdout":
		return os.Stdout
	case "file":
		if cfg.FilePath == "" {
			cfg.FilePath = "logs/preflow.log"
		}
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
			return os.Stderr
		}
		// lumberjack отвечает за ротацию
		return &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	default:
		// stdout занят отчётом, поэтому логи по умолчанию идут в stderr
		return os.Stderr
	}
}

// WithRunID добавляет идентификатор запуска
func WithRunID(runID string) *slog.Logger {
	return Log.With("run_id", runID)
}

// WithComponent добавляет имя компонента
func WithComponent(component string) *slog.Logger {
	return Log.With("component", component)
}

// Debug логирует debug сообщение
func Debug(msg string, args ...any) {
	Log.Debug(msg, args...)
}

// Info логирует info сообщение
func Info(msg string, args ...any) {
	Log.Info(msg, args...)
}

// Warn логирует warning сообщение
func Warn(msg string, args ...any) {
	Log.Warn(msg, args...)
}

// Error логирует error сообщение
func Error(msg string, args ...any) {
	Log.Error(msg, args...)
}

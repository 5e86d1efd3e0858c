// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
)

// Config - главная структура конфигурации
type Config struct {
	App     AppConfig     `koanf:"app"`
	Log     LogConfig     `koanf:"log"`
	Metrics MetricsConfig `koanf:"metrics"`
	Tracing TracingConfig `koanf:"tracing"`
	Solver  SolverConfig  `koanf:"solver"`
	Report  ReportConfig  `koanf:"report"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace"`
	Subsystem string `koanf:"subsystem"`
	Textfile  string `koanf:"textfile"` // файл для node_exporter, пишется при завершении
	Port      int    `koanf:"port"`     // 0 - HTTP endpoint не поднимается
	Path      string `koanf:"path"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// SolverConfig - настройки параллельного preflow-push
type SolverConfig struct {
	Workers          int  `koanf:"workers"`
	VerifyInvariants bool `koanf:"verify_invariants"`
	MaxRounds        int  `koanf:"max_rounds"` // 0 - без ограничения
	Source           int  `koanf:"source"`     // граничный узел-кандидат в источники
	Sink             int  `koanf:"sink"`       // -1 - последний узел
}

// ReportConfig - настройки отчёта о результате
type ReportConfig struct {
	Format          string `koanf:"format"` // none, json, csv, markdown, excel, pdf, dot
	Output          string `koanf:"output"` // путь к файлу, "-" - stdout
	Title           string `koanf:"title"`
	MaxEdgesInTable int    `koanf:"max_edges_in_table"`
}

var validReportFormats = map[string]bool{
	"none": true, "json": true, "csv": true, "markdown": true,
	"excel": true, "pdf": true, "dot": true,
}

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	validOutputs := map[string]bool{"stdout": true, "stderr": true, "file": true}
	if !validOutputs[c.Log.Output] {
		errs = append(errs, fmt.Sprintf("log.output must be one of: stdout, stderr, file, got %s", c.Log.Output))
	}

	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		errs = append(errs, fmt.Sprintf("metrics.port must be between 0 and 65535, got %d", c.Metrics.Port))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Sprintf("tracing.sample_rate must be within [0, 1], got %g", c.Tracing.SampleRate))
	}

	if c.Solver.Workers < 1 {
		errs = append(errs, fmt.Sprintf("solver.workers must be positive, got %d", c.Solver.Workers))
	}
	if c.Solver.MaxRounds < 0 {
		errs = append(errs, fmt.Sprintf("solver.max_rounds must be non-negative, got %d", c.Solver.MaxRounds))
	}
	if c.Solver.Source < 0 {
		errs = append(errs, fmt.Sprintf("solver.source must be non-negative, got %d", c.Solver.Source))
	}
	if c.Solver.Sink < -1 {
		errs = append(errs, fmt.Sprintf("solver.sink must be -1 or a node index, got %d", c.Solver.Sink))
	}

	if c.Report.Format != "" && !validReportFormats[c.Report.Format] {
		errs = append(errs, fmt.Sprintf("report.format must be one of: none, json, csv, markdown, excel, pdf, dot, got %s", c.Report.Format))
	}
	if c.Report.MaxEdgesInTable < 0 {
		errs = append(errs, "report.max_edges_in_table must be non-negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// ReportEnabled проверяет, нужен ли отчёт
func (c *Config) ReportEnabled() bool {
	return c.Report.Format != "" && c.Report.Format != "none"
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

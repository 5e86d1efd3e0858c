package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix    = "PREFLOW_"
	configEnvVar = "PREFLOW_CONFIG_PATH"
)

// Loader загружает конфигурацию из разных источников
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
	overrides   map[string]any
	// foundFile - путь к загруженному файлу конфигурации, если он был найден
	foundFile string
}

// NewLoader создаёт новый загрузчик конфигурации
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"config.yaml",
			"config/config.yaml",
			"/etc/preflow/config.yaml",
		},
		envPrefix: envPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoaderOption - опция для конфигурации загрузчика
type LoaderOption func(*Loader)

// WithConfigPaths устанавливает пути поиска конфигурации
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.configPaths = paths
	}
}

// WithEnvPrefix устанавливает префикс переменных окружения
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithOverrides задаёт значения с наивысшим приоритетом (флаги командной строки)
func WithOverrides(values map[string]any) LoaderOption {
	return func(l *Loader) {
		l.overrides = values
	}
}

// Load загружает конфигурацию с приоритетом:
// 1. Defaults (самый низкий)
// 2. Config file (yaml)
// 3. Environment variables
// 4. Overrides (самый высокий)
func (l *Loader) Load() (*Config, error) {
	// 1. Загружаем значения по умолчанию
	if err := l.loadDefaults(); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Загружаем из файла конфигурации. Файл не обязателен
	if err := l.loadConfigFile(); err != nil {
		return nil, err
	}

	// 3. Загружаем из переменных окружения (перезаписывают файл)
	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	// 4. Явные переопределения
	if len(l.overrides) > 0 {
		if err := l.k.Load(confmap.Provider(l.overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to load overrides: %w", err)
		}
	}

	// 5. Распаковываем в структуру
	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 6. Валидируем
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ConfigFile возвращает путь к загруженному файлу или пустую строку
func (l *Loader) ConfigFile() string {
	return l.foundFile
}

// loadDefaults загружает значения по умолчанию
func (l *Loader) loadDefaults() error {
	defaults := map[string]any{
		// App
		"app.name":        "preflow",
		"app.version":     "1.0.0",
		"app.environment": "production",

		// Log
		"log.level":       "info",
		"log.format":      "text",
		"log.output":      "stderr",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		// Metrics
		"metrics.enabled":   false,
		"metrics.namespace": "preflow",
		"metrics.subsystem": "solver",
		"metrics.textfile":  "",
		"metrics.port":      0,
		"metrics.path":      "/metrics",

		// Tracing
		"tracing.enabled":      false,
		"tracing.endpoint":     "localhost:4317",
		"tracing.service_name": "preflow",
		"tracing.sample_rate":  1.0,

		// Solver
		"solver.workers":           2,
		"solver.verify_invariants": false,
		"solver.max_rounds":        0,
		"solver.source":            0,
		"solver.sink":              -1,

		// Report
		"report.format":             "none",
		"report.output":             "-",
		"report.title":              "Maximum Flow Report",
		"report.max_edges_in_table": 50,
	}

	return l.k.Load(confmap.Provider(defaults, "."), nil)
}

// loadConfigFile загружает конфигурацию из файла.
// Явно указанный через переменную окружения файл обязан существовать.
func (l *Loader) loadConfigFile() error {
	if configPath := os.Getenv(configEnvVar); configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return fmt.Errorf("config file %s: %w", configPath, err)
		}
		l.foundFile = configPath
		return l.k.Load(file.Provider(configPath), yaml.Parser())
	}

	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		if _, err := os.Stat(absPath); err == nil {
			l.foundFile = absPath
			return l.k.Load(file.Provider(absPath), yaml.Parser())
		}
	}

	return nil
}

// loadEnv загружает конфигурацию из переменных окружения
// Использует явный маппинг для полей с подчёркиванием
func (l *Loader) loadEnv() error {
	return l.k.Load(env.ProviderWithValue(l.envPrefix, ".", func(envKey string, value string) (string, interface{}) {
		// Убираем префикс и приводим к нижнему регистру
		key := strings.ToLower(strings.TrimPrefix(envKey, l.envPrefix))

		// Путь к файлу конфигурации обрабатывается отдельно
		if key == "config_path" {
			return "", nil
		}

		if mappedKey, ok := envKeyMappings[key]; ok {
			key = mappedKey
		} else {
			// По умолчанию заменяем все подчёркивания на точки
			key = strings.ReplaceAll(key, "_", ".")
		}

		return key, value
	}), nil)
}

// envKeyMappings - маппинг переменных окружения на ключи конфига
// Необходим для полей, содержащих подчёркивания в именах
var envKeyMappings = map[string]string{
	// Log
	"log_level":       "log.level",
	"log_format":      "log.format",
	"log_output":      "log.output",
	"log_file_path":   "log.file_path",
	"log_max_size":    "log.max_size",
	"log_max_backups": "log.max_backups",
	"log_max_age":     "log.max_age",
	"log_compress":    "log.compress",

	// Tracing
	"tracing_service_name": "tracing.service_name",
	"tracing_sample_rate":  "tracing.sample_rate",

	// Solver
	"solver_workers":           "solver.workers",
	"solver_verify_invariants": "solver.verify_invariants",
	"solver_max_rounds":        "solver.max_rounds",
	"solver_source":            "solver.source",
	"solver_sink":              "solver.sink",

	// Report
	"report_format":             "report.format",
	"report_output":             "report.output",
	"report_title":              "report.title",
	"report_max_edges_in_table": "report.max_edges_in_table",
}

// Load загружает конфигурацию загрузчиком по умолчанию
func Load() (*Config, error) {
	return NewLoader().Load()
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del journal.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Cache   CacheConfig   `yaml:"cache"`
	Job     JobConfig     `yaml:"job"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// CacheConfig controla la caché de métricas por cuenta.
type CacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"` // 0 = default; negativo = desactivada
}

// JobConfig controla el snapshot de fin de día.
type JobConfig struct {
	Schedule          string  `yaml:"schedule"` // cron de 6 campos con segundos; UTC salvo prefijo CRON_TZ=
	Workers           int     `yaml:"workers"`
	AccountsPerSecond float64 `yaml:"accounts_per_second"`
}

// MetricsConfig controla el endpoint de Prometheus del modo daemon.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // vacío = no se expone /metrics
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
// Si path no existe se usan solo env y defaults.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	case os.IsNotExist(err):
		// sin archivo: defaults
	default:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// CacheTTL devuelve el TTL de la caché como time.Duration.
func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTLSeconds < 0 {
		return 0
	}
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("JOURNAL_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "journal.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 30
	}
	if cfg.Job.Schedule == "" {
		cfg.Job.Schedule = "CRON_TZ=America/Chicago 0 5 16 * * 1-5" // cierre CME + 5 min
	}
	if cfg.Job.Workers <= 0 {
		cfg.Job.Workers = 4
	}
	if cfg.Job.AccountsPerSecond < 0 {
		cfg.Job.AccountsPerSecond = 0
	}
}

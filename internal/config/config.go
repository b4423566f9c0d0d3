package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
)

const (
	BackendPostgREST = "postgrest"
	BackendPostgres  = "postgres"
	BackendDynamoDB  = "dynamodb"
)

// Config is read once at startup. Secret values may be literal or an
// "ssm:<parameter>" reference resolved by bootstrap.
type Config struct {
	OpenAIAPIKey  string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string        `env:"OPENAI_BASE_URL"`
	OpenAIModel   string        `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	OpenAITimeout time.Duration `env:"OPENAI_TIMEOUT" envDefault:"0s"`

	StoreBackend  string `env:"STORE_BACKEND" envDefault:"postgrest"`
	SupabaseURL   string `env:"SUPABASE_URL"`
	SupabaseKey   string `env:"SUPABASE_SERVICE_ROLE_KEY"`
	DatabaseURL   string `env:"DATABASE_URL"`
	ExpensesTable string `env:"EXPENSES_TABLE" envDefault:"expenses"`
	QueryRowCap   int    `env:"QUERY_ROW_CAP" envDefault:"1000"`

	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8888"`
}

// Load reads an optional .env file (current directory, then parent) and
// parses the environment into a Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: load .env: %w", err)
		}
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.StoreBackend {
	case BackendPostgREST, BackendPostgres, BackendDynamoDB:
	default:
		errs = append(errs, fmt.Errorf("config: unknown STORE_BACKEND %q", c.StoreBackend))
	}
	if c.QueryRowCap <= 0 {
		errs = append(errs, fmt.Errorf("config: QUERY_ROW_CAP must be positive, got %d", c.QueryRowCap))
	}
	if c.OpenAITimeout < 0 {
		errs = append(errs, fmt.Errorf("config: OPENAI_TIMEOUT must not be negative, got %s", c.OpenAITimeout))
	}
	if strings.TrimSpace(c.ExpensesTable) == "" {
		errs = append(errs, errors.New("config: EXPENSES_TABLE must not be empty"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// MissingForQuery names the variables the question endpoint needs but the
// environment does not provide. The extraction endpoint only needs the
// completion key and reports its absence per request.
func (c Config) MissingForQuery() []string {
	var missing []string
	check := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	check("OPENAI_API_KEY", c.OpenAIAPIKey)
	switch c.StoreBackend {
	case BackendPostgREST:
		check("SUPABASE_URL", c.SupabaseURL)
		check("SUPABASE_SERVICE_ROLE_KEY", c.SupabaseKey)
	case BackendPostgres:
		check("DATABASE_URL", c.DatabaseURL)
	}
	return missing
}

func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

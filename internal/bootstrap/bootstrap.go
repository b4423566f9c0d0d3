package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/jackc/pgx/v5/pgxpool"

	"expense-assistant/handler"
	"expense-assistant/internal/config"
	"expense-assistant/internal/domain"
	"expense-assistant/internal/integrations/openai"
	"expense-assistant/internal/integrations/paramstore"
	"expense-assistant/internal/repository"
	"expense-assistant/internal/usecase"
)

// App is the wired dependency graph shared by the Lambda entry point and the
// development server.
type App struct {
	Handler *handler.Handler
	Logger  *slog.Logger

	closers []func()
}

// Close releases pooled connections. Safe to call more than once.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

type Option func(*options)

type options struct {
	loadAWS   func(ctx context.Context) (aws.Config, error)
	logOutput io.Writer
}

// WithAWSConfigLoader replaces config.LoadDefaultConfig.
func WithAWSConfigLoader(load func(ctx context.Context) (aws.Config, error)) Option {
	return func(o *options) {
		o.loadAWS = load
	}
}

func WithLogOutput(w io.Writer) Option {
	return func(o *options) {
		o.logOutput = w
	}
}

func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	o := options{
		loadAWS: func(ctx context.Context) (aws.Config, error) {
			return awsconfig.LoadDefaultConfig(ctx)
		},
		logOutput: os.Stdout,
	}
	for _, opt := range opts {
		opt(&o)
	}

	logger, err := NewLogger(cfg, o.logOutput)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	var awsCfg aws.Config
	if needsAWS(cfg) {
		awsCfg, err = o.loadAWS(ctx)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: load AWS config: %w", err)
		}
	}

	missing := cfg.MissingForQuery()
	if len(missing) > 0 {
		logger.Warn("query endpoint disabled, missing configuration", "missing", missing)
	}

	if err := resolveSecrets(ctx, &cfg, awsCfg); err != nil {
		return nil, err
	}

	app := &App{Logger: logger}

	llm := openai.NewClient(cfg.OpenAIAPIKey,
		openai.WithBaseURL(cfg.OpenAIBaseURL),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.OpenAITimeout}),
	)

	var store usecase.ExpenseFinder = unconfiguredStore{missing: missing}
	if len(missing) == 0 {
		store, err = newStore(ctx, cfg, awsCfg, app)
		if err != nil {
			app.Close()
			return nil, err
		}
	}

	extractor, err := usecase.NewExtractService(llm, cfg.OpenAIModel, usecase.WithLogger(logger))
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("bootstrap: extract service: %w", err)
	}
	answerer, err := usecase.NewQueryService(llm, store, cfg.OpenAIModel, cfg.QueryRowCap, usecase.WithLogger(logger))
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("bootstrap: query service: %w", err)
	}

	app.Handler, err = handler.NewHandler(extractor, answerer,
		handler.WithMissingConfig(missing),
		handler.WithLogger(logger),
	)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("bootstrap: handler: %w", err)
	}

	logger.Info("bootstrap complete", "store_backend", cfg.StoreBackend, "model", cfg.OpenAIModel, "row_cap", cfg.QueryRowCap)
	return app, nil
}

func NewLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	lvl, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func needsAWS(cfg config.Config) bool {
	return cfg.StoreBackend == config.BackendDynamoDB ||
		paramstore.IsRef(cfg.OpenAIAPIKey) ||
		paramstore.IsRef(cfg.SupabaseKey) ||
		paramstore.IsRef(cfg.DatabaseURL)
}

// resolveSecrets replaces "ssm:" references in cfg with the parameter values.
func resolveSecrets(ctx context.Context, cfg *config.Config, awsCfg aws.Config) error {
	refs := []*string{&cfg.OpenAIAPIKey, &cfg.SupabaseKey, &cfg.DatabaseURL}

	var params *paramstore.Client
	for _, ref := range refs {
		if !paramstore.IsRef(*ref) {
			continue
		}
		if params == nil {
			var err error
			params, err = paramstore.New(awsssm.NewFromConfig(awsCfg))
			if err != nil {
				return fmt.Errorf("bootstrap: paramstore: %w", err)
			}
		}
		value, err := params.Resolve(ctx, *ref)
		if err != nil {
			return fmt.Errorf("bootstrap: resolve secret: %w", err)
		}
		*ref = value
	}
	return nil
}

func newStore(ctx context.Context, cfg config.Config, awsCfg aws.Config, app *App) (usecase.ExpenseFinder, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgREST:
		store, err := repository.NewPostgRESTClient(cfg.SupabaseURL, cfg.SupabaseKey, cfg.ExpensesTable)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: postgrest store: %w", err)
		}
		return store, nil
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: postgres pool: %w", err)
		}
		app.closers = append(app.closers, pool.Close)
		store, err := repository.NewPostgresClient(pool, cfg.ExpensesTable)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: postgres store: %w", err)
		}
		return store, nil
	case config.BackendDynamoDB:
		store, err := repository.NewDynamoClient(awsdynamodb.NewFromConfig(awsCfg), cfg.ExpensesTable)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: dynamodb store: %w", err)
		}
		return store, nil
	}
	return nil, fmt.Errorf("bootstrap: unknown store backend %q", cfg.StoreBackend)
}

// unconfiguredStore stands in when store settings are absent. The handler
// rejects query requests before they reach it.
type unconfiguredStore struct {
	missing []string
}

func (s unconfiguredStore) FindExpenses(context.Context, domain.ExpenseQuery) ([]domain.StoredExpense, error) {
	return nil, errors.New("store not configured: missing " + strings.Join(s.missing, ", "))
}

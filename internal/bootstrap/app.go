package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"mailmind-backend/internal/documents"
	"mailmind-backend/internal/embedding"
	embeddingopenai "mailmind-backend/internal/embedding/openai"
	"mailmind-backend/internal/generation"
	generationopenai "mailmind-backend/internal/generation/openai"
	"mailmind-backend/internal/queue"
	"mailmind-backend/internal/services/health"
	"mailmind-backend/internal/shared/config"
	"mailmind-backend/internal/shared/server"
	"mailmind-backend/internal/shared/storage/db"
	"mailmind-backend/internal/shared/storage/object"
	localstore "mailmind-backend/internal/shared/storage/object/local"
	s3store "mailmind-backend/internal/shared/storage/object/s3"
	"mailmind-backend/internal/suggestions"
)

// App holds shared dependencies for the API and worker processes.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	Embedder  embedding.Client
	Generator generation.Client

	DocumentsRepo   documents.DocumentsRepo
	SuggestionsRepo suggestions.Repo

	DocumentsService   *documents.Service
	SuggestionsService *suggestions.Service
	HealthService      *health.Service

	DocumentsHandler   *documents.Handler
	SuggestionsHandler *suggestions.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             app.Config,
		Health:             app.HealthService,
		DocumentsHandler:   app.DocumentsHandler,
		SuggestionsHandler: app.SuggestionsHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.SQSQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var docRepo documents.DocumentsRepo
	var sugRepo suggestions.Repo

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		sugRepo = &suggestions.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		sugRepo = suggestions.NewMemoryRepo()
	}

	embedder := embedding.Client(embedding.PlaceholderClient{})
	generator := generation.Client(generation.PlaceholderClient{})
	if app.Config.OpenAIAPIKey != "" {
		embedClient, err := embeddingopenai.NewClient(app.Config.OpenAIAPIKey, app.Config.EmbeddingModel)
		if err != nil {
			return err
		}
		embedder = embedClient

		genClient, err := generationopenai.NewClient(app.Config.OpenAIAPIKey, app.Config.GenerationModel)
		if err != nil {
			return err
		}
		generator = genClient
	} else if !isDevLike(app.Config.Env) {
		return fmt.Errorf("OPENAI_API_KEY is required outside dev environments")
	}

	docSvc := &documents.Service{
		Store:    app.Store,
		Repo:     docRepo,
		Embedder: embedder,
		Queue:    app.Queue,
	}

	sugSvc := &suggestions.Service{
		Repo:      sugRepo,
		DocRepo:   docRepo,
		Embedder:  embedder,
		Generator: generator,
		Threshold: app.Config.RankThreshold,
		TopN:      app.Config.RankTopN,
	}

	app.Embedder = embedder
	app.Generator = generator
	app.DocumentsRepo = docRepo
	app.SuggestionsRepo = sugRepo
	app.DocumentsService = docSvc
	app.SuggestionsService = sugSvc
	app.HealthService = health.NewService(app.DB)
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.SuggestionsHandler = suggestions.NewHandler(sugSvc)

	return nil
}

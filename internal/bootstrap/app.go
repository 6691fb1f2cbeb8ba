package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"cvquery-backend/internal/config"
	"cvquery-backend/internal/curricula"
	"cvquery-backend/internal/extract"
	"cvquery-backend/internal/llm"
	openai "cvquery-backend/internal/llm/openai"
	"cvquery-backend/internal/ocr"
	"cvquery-backend/internal/ocr/tesseract"
	"cvquery-backend/internal/server"
	"cvquery-backend/internal/shared/storage/db"
	"cvquery-backend/internal/shared/storage/dynamo"
	"cvquery-backend/internal/shared/storage/object"
	localstore "cvquery-backend/internal/shared/storage/object/local"
	s3store "cvquery-backend/internal/shared/storage/object/s3"
)

const version = "1.0.0"

// App holds the wired dependencies for one process.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Repo     curricula.Repo
	Store    object.ObjectStore
	Analyzer *curricula.LLMAnalyzer
	Service  *curricula.Service
	Handler  *curricula.Handler
}

// Build prepares all dependencies and the HTTP router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	repo, sqlDB, backend, err := buildRepo(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	analyzer := curricula.NewAnalyzer(buildLLM(cfg))
	extractor := extract.NewService(buildOCR(cfg))

	svc := &curricula.Service{
		Extractor: extractor,
		Analyzer:  analyzer,
		Repo:      repo,
		Archive:   curricula.NewArchive(store),
	}
	handler := curricula.NewHandler(svc, curricula.Limits{
		MaxFiles:          cfg.MaxFilesPerRequest,
		MaxFileSizeBytes:  cfg.MaxFileSizeBytes,
		AllowedExtensions: cfg.AllowedExtensions,
	})

	router := server.NewEngine(server.Deps{
		Config:    cfg,
		Curricula: handler,
		Health: server.HealthInfo{
			Version: version,
			Services: map[string]string{
				"store":    backend,
				"analyzer": analyzer.Mode().String(),
				"ocr":      ocrStatus(cfg),
				"archive":  cfg.ObjectStoreType,
			},
		},
	})

	return &App{
		Config:   cfg,
		Router:   router,
		DB:       sqlDB,
		Repo:     repo,
		Store:    store,
		Analyzer: analyzer,
		Service:  svc,
		Handler:  handler,
	}, nil
}

// Close releases process-wide resources.
func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
}

func buildRepo(ctx context.Context, cfg config.Config) (curricula.Repo, *sql.DB, string, error) {
	switch cfg.StoreBackend {
	case "postgres":
		sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			if isDevLike(cfg.Env) {
				log.Printf("bootstrap: database connect failed; using in-memory records: %v", err)
				return curricula.NewMemoryRepo(), nil, "memory", nil
			}
			return nil, nil, "", err
		}
		if err := db.RunMigrations(ctx, sqlDB); err != nil {
			sqlDB.Close()
			return nil, nil, "", fmt.Errorf("migrations: %w", err)
		}
		return &curricula.PGRepo{DB: sqlDB}, sqlDB, "postgres", nil
	case "dynamodb":
		client, err := dynamo.NewClient(ctx, cfg.AWSRegion, cfg.DynamoEndpoint)
		if err != nil {
			if isDevLike(cfg.Env) {
				log.Printf("bootstrap: dynamodb client failed; using in-memory records: %v", err)
				return curricula.NewMemoryRepo(), nil, "memory", nil
			}
			return nil, nil, "", err
		}
		return &curricula.DynamoRepo{Client: client, Table: cfg.DynamoTable}, nil, "dynamodb", nil
	default:
		return curricula.NewMemoryRepo(), nil, "memory", nil
	}
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
	case "none":
		return nil, nil
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildLLM(cfg config.Config) llm.StructuredClient {
	if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		log.Printf("bootstrap: OPENAI_API_KEY empty; analyzer runs in degraded mode")
		return nil
	}
	client, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAITimeout)
	if err != nil {
		log.Printf("bootstrap: openai client failed; analyzer runs in degraded mode: %v", err)
		return nil
	}
	return client
}

func buildOCR(cfg config.Config) ocr.ImageRecognizer {
	if strings.TrimSpace(cfg.OCRBaseURL) == "" {
		return nil
	}
	client, err := tesseract.NewClient(cfg.OCRBaseURL, "", 0)
	if err != nil {
		log.Printf("bootstrap: ocr client failed; image files will not be processed: %v", err)
		return nil
	}
	return client
}

func ocrStatus(cfg config.Config) string {
	if strings.TrimSpace(cfg.OCRBaseURL) == "" {
		return "disabled"
	}
	return "tesseract"
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

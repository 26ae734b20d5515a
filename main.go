package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql (migrations)

	"github.com/kinworks/kin-engine/pkg/config"
	"github.com/kinworks/kin-engine/pkg/database"
	"github.com/kinworks/kin-engine/pkg/handlers"
	"github.com/kinworks/kin-engine/pkg/logging"
	"github.com/kinworks/kin-engine/pkg/middleware"
	"github.com/kinworks/kin-engine/pkg/repositories"
	"github.com/kinworks/kin-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load .env if present; real environments configure via the environment.
	_ = godotenv.Load()

	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("redis", cfg.Cache.RedisHost))

	ctx := context.Background()

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations using database/sql (required by golang-migrate)
	sqlDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	// Tree cache: Redis when configured, in-memory otherwise.
	var treeCache services.TreeCache
	redisClient, err := database.NewRedisClient(&cfg.Cache)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient != nil {
		treeCache = services.NewRedisTreeCache(redisClient, logger)
		logger.Info("Using Redis tree cache")
	} else {
		treeCache = services.NewMemoryTreeCache()
		logger.Info("Using in-memory tree cache")
	}

	// Repositories
	personRepo := repositories.NewPersonRepository()
	relRepo := repositories.NewRelationshipRepository()
	deathRepo := repositories.NewDeathRepository()
	marriageRepo := repositories.NewMarriageRepository()
	eventRepo := repositories.NewFamilyEventRepository()

	// Services
	deriver := services.NewRelationshipDeriver(relRepo, logger)
	treeService := services.NewFamilyTreeService(personRepo, relRepo, treeCache, logger)
	personService := services.NewPersonService(db, personRepo, relRepo, deathRepo, marriageRepo, deriver, treeService, logger)
	marriageService := services.NewMarriageService(db, marriageRepo, relRepo, treeService, logger)
	relationshipService := services.NewRelationshipService(db, relRepo, personRepo, marriageRepo, deriver, treeService, logger)
	eventService := services.NewFamilyEventService(eventRepo, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(cfg, logger).RegisterRoutes(mux)
	handlers.NewPersonHandler(personService, logger).RegisterRoutes(mux)
	handlers.NewRelationshipHandler(relationshipService, logger).RegisterRoutes(mux)
	handlers.NewTreeHandler(treeService, logger).RegisterRoutes(mux)
	handlers.NewMarriageHandler(marriageService, logger).RegisterRoutes(mux)
	handlers.NewFamilyEventHandler(eventService, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(middleware.DatabaseQuerier(db)(mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting kin-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

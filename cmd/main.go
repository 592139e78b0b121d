package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/batiflow/tender-service/internal/config"
	"github.com/batiflow/tender-service/internal/db"
	"github.com/batiflow/tender-service/internal/handlers"
	"github.com/batiflow/tender-service/internal/repository"
	"github.com/batiflow/tender-service/internal/router"
	"github.com/batiflow/tender-service/internal/services"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	if err := config.InitLogger(cfg); err != nil {
		log.Fatal("cannot init logger:", err)
	}
	defer zap.L().Sync()

	runDBMigration(cfg.MigrationURL, cfg.PostgresConn)

	dbPool, err := db.InitDb(context.Background(), cfg)
	if err != nil {
		zap.L().Fatal("error initializing database", zap.Error(err))
	}
	defer dbPool.Close()

	tenderRepo := repository.NewPostgresTenderRepository(dbPool)
	offerRepo := repository.NewPostgresOfferRepository(dbPool)
	awardRepo := repository.NewPostgresAwardRepository(dbPool)
	directory := repository.NewPostgresProjectDirectory(dbPool)
	audit := repository.NewPostgresAuditRecorder(dbPool)

	tenderService := services.NewTenderService(tenderRepo, directory, audit)
	offerService := services.NewOfferService(offerRepo, tenderRepo, audit)
	comparisonService := services.NewComparisonService(tenderRepo, offerRepo)
	awardService := services.NewAwardService(awardRepo, tenderRepo)

	tenderHandler := handlers.NewTenderHandler(tenderService, 5*time.Second)
	offerHandler := handlers.NewOfferHandler(offerService, comparisonService, awardService, 5*time.Second)

	routes := router.InitRoutes(tenderHandler, offerHandler)

	zap.L().Info("server is listening", zap.String("address", cfg.ServerAddress))
	if err := http.ListenAndServe(cfg.ServerAddress, routes); err != nil {
		zap.L().Fatal("server failed", zap.Error(err))
	}
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		zap.L().Fatal("cannot create a new migrate instance", zap.Error(err))
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		zap.L().Fatal("failed to run migrate up", zap.Error(err))
	}
	zap.L().Info("db migrated successfully")
}

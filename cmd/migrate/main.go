package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/repository/postgres"
)

func main() {
	down := flag.Bool("down", false, "roll back every migration instead of applying them")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	cfg, err := config.LoadDatabase()
	if err != nil {
		logger.Fatal("Failed to load database config", zap.Error(err))
	}

	dsn := postgres.DSN(cfg)
	if dsnEnv := os.Getenv("DATABASE_URL"); dsnEnv != "" {
		dsn = dsnEnv
	} else if err := ensureDatabase(cfg, logger); err != nil {
		logger.Fatal("Failed to prepare database", zap.Error(err))
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	if *down {
		err = postgres.RollbackMigrations(db, logger)
	} else {
		err = postgres.RunMigrations(db, logger)
	}
	if err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}
}

// ensureDatabase creates cfg.DBName through the postgres maintenance database when missing
func ensureDatabase(cfg config.DatabaseConfig, logger *zap.Logger) error {
	admin := cfg
	admin.DBName = "postgres"
	postgresDB, err := sql.Open("postgres", postgres.DSN(admin))
	if err != nil {
		return fmt.Errorf("connect to postgres database: %w", err)
	}
	defer postgresDB.Close()

	var exists bool
	err = postgresDB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check database existence: %w", err)
	}
	if exists {
		return nil
	}

	logger.Info("Creating database", zap.String("db_name", cfg.DBName))
	if _, err := postgresDB.Exec(fmt.Sprintf("CREATE DATABASE %q", cfg.DBName)); err != nil {
		return fmt.Errorf("create database: %w", err)
	}
	return nil
}

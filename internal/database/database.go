package database

import (
	"fmt"

	"github.com/agrimsachdeva/creativity-assesment/internal/config"
	logging "github.com/agrimsachdeva/creativity-assesment/internal/logging"
	"github.com/agrimsachdeva/creativity-assesment/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init(log *zap.Logger) {
	var err error
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	// Create our custom GORM logger
	gormLogger := logging.NewGormZapLogger(log)
	gormLogger.LogLevel = logger.Warn

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})

	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	log.Info("Database connection established successfully.")
	runMigrations(log)
}

func runMigrations(log *zap.Logger) {
	// GORM's AutoMigrate will create tables, columns, and foreign keys.
	// It will NOT create custom indexes, so we handle that separately.
	if err := DB.AutoMigrate(&models.CompletionRecord{}); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	// The charts query by participant and task, newest first.
	interactionsIndex := `CREATE INDEX IF NOT EXISTS idx_interactions_query ON interactions (participant_id, task, ended_at DESC);`
	if err := DB.Exec(interactionsIndex).Error; err != nil {
		log.Fatal("Failed to create custom index on interactions table", zap.Error(err))
	}
	log.Info("Custom indexes ensured successfully.")
}

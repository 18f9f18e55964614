package main

import (
	"github.com/agrimsachdeva/creativity-assesment/internal/config"
	"github.com/agrimsachdeva/creativity-assesment/internal/database"
	"github.com/agrimsachdeva/creativity-assesment/internal/llm"
	logger "github.com/agrimsachdeva/creativity-assesment/internal/logging"
	"github.com/agrimsachdeva/creativity-assesment/internal/models"
	"github.com/agrimsachdeva/creativity-assesment/internal/repository"
	"github.com/agrimsachdeva/creativity-assesment/internal/router"
	"github.com/agrimsachdeva/creativity-assesment/internal/services"
	"github.com/agrimsachdeva/creativity-assesment/internal/session"
	"github.com/agrimsachdeva/creativity-assesment/internal/telemetry"

	"go.uber.org/zap"
)

func main() {
	// The configuration loader wants a logger and the logger wants its
	// rotation settings from the configuration, so bootstrap with a plain
	// console logger and rebuild once the config is loaded.
	bootLog, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize bootstrap logger: " + err.Error())
	}

	if err := config.Init(".", bootLog); err != nil {
		bootLog.Fatal("Failed to load configuration", zap.Error(err))
	}
	bootLog.Sync()

	logConf := config.Conf.Logging
	log, err := logger.Init(".", logger.Options{
		Directory:  logConf.Directory,
		MaxSize:    logConf.MaxSize,
		MaxBackups: logConf.MaxBackups,
		MaxAge:     logConf.MaxAge,
		Compress:   logConf.Compress,
	})
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize Database
	database.Init(log)

	// Load task stimuli at startup
	catalog, err := models.LoadCatalog(config.Conf.Tasks.File)
	if err != nil {
		log.Fatal("Failed to load task catalog", zap.Error(err))
	}

	llmConf := config.Conf.LLM
	chatClient := llm.NewClient(llm.Options{
		APIKey:      llmConf.APIKey,
		BaseURL:     llmConf.BaseURL,
		Model:       llmConf.Model,
		Timeout:     llmConf.Timeout,
		MaxTokens:   llmConf.MaxTokens,
		Temperature: llmConf.Temperature,
	})

	registry := session.NewRegistry(log)
	newSession := func(participantID string, task telemetry.TaskKind) *session.Session {
		return session.New(participantID, task, session.Options{
			Telemetry: telemetryConfig(),
			Chat:      chatClient,
			Persist:   repository.SaveCompletion,
			Log:       log,
		})
	}

	sessConf := config.Conf.Session
	reaper := services.NewReaper(log, registry, sessConf.ReaperInterval, sessConf.IdleTimeout)
	reaper.Start()

	// Setup router, passing the logger to it
	r := router.Setup(log, router.Deps{
		Registry:   registry,
		Catalog:    catalog,
		NewSession: newSession,
	})

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}

// telemetryConfig maps the viper section onto the engine's thresholds.
// Unset values fall back to the engine defaults.
func telemetryConfig() telemetry.Config {
	t := config.Conf.Telemetry
	return telemetry.Config{
		PauseThresholdMS:    t.PauseThresholdMS,
		ThinkingThresholdMS: t.ThinkingThresholdMS,
		TypingWindowMS:      t.TypingWindowMS,
		TemporalWindowMS:    t.TemporalWindowMS,
		PointerMoveCap:      t.PointerMoveCap,
		PreviewLength:       t.PreviewLength,
		MinPhraseLength:     t.MinPhraseLength,
		LastResortAttempts:  t.LastResortAttempts,
	}
}

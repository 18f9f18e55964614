package router

import (
	"net/http"
	"time"

	"github.com/agrimsachdeva/creativity-assesment/internal/config"
	"github.com/agrimsachdeva/creativity-assesment/internal/handlers"
	"github.com/agrimsachdeva/creativity-assesment/internal/models"
	"github.com/agrimsachdeva/creativity-assesment/internal/monitoring"
	"github.com/agrimsachdeva/creativity-assesment/internal/session"
	"github.com/agrimsachdeva/creativity-assesment/internal/telemetry"
	"github.com/agrimsachdeva/creativity-assesment/internal/utils"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}
func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(429, "Too many requests. Try again later.")
}

// Deps carries everything the routes need.
type Deps struct {
	Registry   *session.Registry
	Catalog    *models.Catalog
	NewSession func(participantID string, task telemetry.TaskKind) *session.Session
}

func Setup(log *zap.Logger, deps Deps) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	secret := config.Conf.Server.CookieSecret
	if secret == "" {
		// Ephemeral secret: cookies stop resolving across restarts, but
		// sessions are in-memory anyway.
		generated, err := utils.GenerateSecureToken(32)
		if err != nil {
			log.Fatal("Failed to generate cookie secret", zap.Error(err))
		}
		secret = generated
		log.Warn("No cookie secret configured, generated an ephemeral one")
	}

	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   false, // Set to true in production
		SameSite: http.SameSiteLaxMode,
		MaxAge:   86400,
	})
	router.Use(sessions.Sessions("creatask", store))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})

	// Handlers and routes
	sessionHandler := handlers.NewSessionHandler(log, deps.Registry, deps.Catalog, deps.NewSession)
	eventsHandler := handlers.NewEventsHandler(log, deps.Registry)
	chatHandler := handlers.NewChatHandler(log, deps.Registry)
	completionHandler := handlers.NewCompletionHandler(log, deps.Registry)
	resultsHandler := handlers.NewResultsHandler(log)

	// Session starts are rate limited per IP; telemetry batches are not,
	// a busy round legitimately posts several batches per second.
	rateLimitStore := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 10,
	})
	limiter := ratelimit.RateLimiter(rateLimitStore, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})

	api := router.Group("/api")
	{
		api.POST("/session", limiter, sessionHandler.Start)
		api.GET("/session/:id/snapshot", sessionHandler.Snapshot)
		api.DELETE("/session/:id", sessionHandler.End)
		api.POST("/events", eventsHandler.Ingest)
		api.POST("/chat", chatHandler.Send)
		api.POST("/submit", completionHandler.Submit)
		api.POST("/complete", completionHandler.Complete)
	}

	research := router.Group("/research")
	research.Use(ResearcherAuth(config.Conf.Server.ResearcherKey))
	{
		research.GET("/results", resultsHandler.ShowResults)
		research.GET("/participants", resultsHandler.ListParticipants)
		research.GET("/participants/:participant/completions", resultsHandler.ListCompletions)
		research.GET("/completions/:id", resultsHandler.GetCompletion)
		research.GET("/sessions/:session/queries", resultsHandler.GetSessionQueries)
	}

	router.GET("/metrics", gin.WrapH(monitoring.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

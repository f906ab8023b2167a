package http

import (
	"net/http"
	"time"

	"english-quiz-service/internal/app"
	"english-quiz-service/internal/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig gathers what the HTTP surface needs.
type RouterConfig struct {
	Service         *app.QuizService
	Hub             *app.LeaderboardHub
	Resolver        IdentityResolver
	AllowOrigins    []string
	LeaderboardSize int
	HistorySize     int
	Metrics         *metrics.Recorder
	Logger          *zap.Logger
}

// NewRouter mounts the REST API and websocket endpoints on a gin engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Resolver == nil {
		cfg.Resolver = HeaderResolver{}
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.Middleware())
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", "X-User-Name"},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	}
	router.Use(cors.New(corsCfg))

	quiz := NewQuizHandler(cfg.Service, cfg.LeaderboardSize, cfg.HistorySize, log)
	ws := NewWSHandler(cfg.Service, cfg.Hub, cfg.Resolver, log)

	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	api := router.Group("/api")
	{
		api.GET("/quiz/levels", quiz.Levels)
		api.GET("/leaderboard", quiz.Leaderboard)
		api.GET("/leaderboard/export", quiz.ExportLeaderboard)

		authed := api.Group("")
		authed.Use(RequireIdentity(cfg.Resolver))
		authed.POST("/quiz/start", quiz.Start)
		authed.POST("/quiz/answer", quiz.Answer)
		authed.GET("/quiz/current", quiz.Current)
		authed.GET("/user/results", quiz.UserResults)
	}

	router.GET("/ws/leaderboard", gin.WrapF(ws.ServeLeaderboard))
	router.GET("/ws/quiz", gin.WrapF(ws.ServeQuiz))

	return router
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"english-quiz-service/internal/config"
	transport "english-quiz-service/internal/transport/http"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, log, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	d, err := openDeps(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	eng := buildService(cfg, d, log)

	var resolver transport.IdentityResolver = transport.HeaderResolver{}
	if cfg.Auth.JWTSecret != "" {
		resolver = transport.NewJWTResolver(cfg.Auth.JWTSecret)
	}

	if cfg.Logger.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := transport.NewRouter(transport.RouterConfig{
		Service:         eng.service,
		Hub:             eng.hub,
		Resolver:        resolver,
		AllowOrigins:    cfg.Server.AllowOrigins,
		LeaderboardSize: cfg.Quiz.LeaderboardSize,
		HistorySize:     cfg.Quiz.HistorySize,
		Metrics:         eng.metrics,
		Logger:          log,
	})

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           router,
		ReadHeaderTimeout: config.TTLDuration(cfg.Server.ReadHeaderTimeout, 10*time.Second),
	}

	go func() {
		log.Info("starting quiz service",
			zap.String("addr", server.Addr),
			zap.Bool("redis", d.redis != nil),
			zap.Bool("postgres", d.pool != nil),
			zap.Bool("amqp", d.publisher != nil),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

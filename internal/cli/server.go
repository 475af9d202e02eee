package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/quiz-portal/internal/handlers"
	"github.com/SAP-F-2025/quiz-portal/internal/identity"
	"github.com/SAP-F-2025/quiz-portal/internal/services"
	"github.com/SAP-F-2025/quiz-portal/internal/utils"
	"github.com/SAP-F-2025/quiz-portal/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

// NewServeCmd builds the CLI subcommand that starts the HTTP server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz portal API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, logger, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	slogger := utils.ToSlogLogger(logger)

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Port
	}

	v := validator.New()
	store, err := openRepository(cfg, v, slogger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return err
	}

	repo, redisClient := withCache(ctx, cfg, store, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger.With("component", "events"))
	if err != nil {
		return err
	}
	defer publisher.Close()

	auth, err := newAuthStack(cfg, slogger)
	if err != nil {
		return err
	}

	serviceManager := services.NewServiceManager(repo, auth.provisioner, publisher, slogger, v)
	resolver := identity.NewResolver(repo.User(), slogger.With("component", "identity"))
	handlerManager := handlers.NewHandlerManager(serviceManager, resolver, auth.verifier, auth.google, logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), utils.RequestLogger(logger))
	handlerManager.SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + finalPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	go func() {
		logger.Info("Starting quiz portal", "port", finalPort, "auth_provider", cfg.Auth.Provider)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "Server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("Shutting down server")
	case <-ctx.Done():
		logger.Info("Context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

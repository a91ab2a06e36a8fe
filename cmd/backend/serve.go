package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/regresshub/regresshub/apitoken"
	"github.com/regresshub/regresshub/cmd/backend/handlers"
	"github.com/regresshub/regresshub/dashboard"
	"github.com/regresshub/regresshub/database"
	"github.com/regresshub/regresshub/logger"
	"github.com/regresshub/regresshub/regressionset"
	"github.com/regresshub/regresshub/run"
	"github.com/regresshub/regresshub/session"
	"github.com/regresshub/regresshub/storage"
	"github.com/regresshub/regresshub/testcase"
	"github.com/regresshub/regresshub/user"
	"github.com/spf13/cobra"
)

var configFile string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServer,
}

func init() {
	serveCmd.Flags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.AddCommand(serveCmd)
}

func runServer(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewLogrusLogger(cfg.Log.Level)
	log.Info(ctx, "starting server", logger.Fields{
		"version": Version,
		"commit":  Commit,
		"date":    BuildDate,
	})

	db, err := database.Connect(database.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	defer sqlDB.Close()

	log.Info(ctx, "database connected", logger.Fields{
		"host":     cfg.Database.Host,
		"port":     cfg.Database.Port,
		"database": cfg.Database.Database,
	})

	// Stores
	userStore := user.NewMySQLStore(db, log)
	tokenStore := apitoken.NewMySQLStore(db, log)
	setStore := regressionset.NewMySQLStore(db, log)
	caseStore := testcase.NewMySQLStore(db, log)
	runStore := run.NewMySQLStore(db, log)
	dashboardStore := dashboard.NewMySQLStore(db, log)

	runEngine := run.NewEngine(runStore, setStore, caseStore, log)
	importer := testcase.NewImporter(caseStore, log)

	blobStore, err := storage.New(storage.Config{
		Backend:       cfg.Storage.Backend,
		BaseDir:       cfg.Storage.BaseDir,
		Bucket:        cfg.Storage.S3Bucket,
		Region:        cfg.Storage.S3Region,
		PresignExpiry: cfg.Storage.S3PresignExpiry,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize blob storage: %w", err)
	}

	sessionManager := session.NewManager(cfg.Session.Duration, log)
	sessionManager.StartCleanup(5 * time.Minute)
	defer sessionManager.StopCleanup()

	// Handlers
	authHandler := handlers.NewAuthHandler(
		userStore,
		sessionManager,
		cfg.Session.CookieSecret,
		cfg.Session.CookieName,
		cfg.Session.Secure,
		log,
	)
	userHandler := handlers.NewUserHandler(userStore, log)
	tokenHandler := handlers.NewAPITokenHandler(tokenStore, log)
	setHandler := handlers.NewRegressionSetHandler(setStore, log)
	caseHandler := handlers.NewTestCaseHandler(setStore, caseStore, importer, blobStore, log)
	runHandler := handlers.NewRunHandler(runEngine, log)
	dashboardHandler := handlers.NewDashboardHandler(dashboardStore, log)

	authMiddleware := handlers.NewAuthMiddleware(
		sessionManager,
		tokenStore,
		cfg.Session.CookieSecret,
		cfg.Session.CookieName,
		log,
	)

	// Router
	router := mux.NewRouter()

	router.HandleFunc("/health", handlers.HealthHandler).Methods("GET")

	router.HandleFunc("/api/v1/auth/register", authHandler.Register).Methods("POST")
	router.HandleFunc("/api/v1/auth/login", authHandler.Login).Methods("POST")
	router.HandleFunc("/api/v1/auth/logout", authHandler.Logout).Methods("POST")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authMiddleware.Handler)
	apiRouter.Use(handlers.WriteScopeMiddleware)

	apiRouter.HandleFunc("/auth/me", authHandler.Me).Methods("GET")

	apiRouter.HandleFunc("/users", userHandler.List).Methods("GET")
	apiRouter.HandleFunc("/users/{id}", userHandler.GetByID).Methods("GET")
	apiRouter.HandleFunc("/users/{id}", userHandler.Update).Methods("PUT")
	apiRouter.HandleFunc("/users/{id}", userHandler.Delete).Methods("DELETE")

	apiRouter.HandleFunc("/tokens", tokenHandler.Create).Methods("POST")
	apiRouter.HandleFunc("/tokens", tokenHandler.List).Methods("GET")
	apiRouter.HandleFunc("/tokens/{id}", tokenHandler.Revoke).Methods("DELETE")

	apiRouter.HandleFunc("/regression-sets", setHandler.Create).Methods("POST")
	apiRouter.HandleFunc("/regression-sets", setHandler.List).Methods("GET")
	apiRouter.HandleFunc("/regression-sets/{id}", setHandler.GetByID).Methods("GET")
	apiRouter.HandleFunc("/regression-sets/{id}", setHandler.Update).Methods("PUT")
	apiRouter.HandleFunc("/regression-sets/{id}", setHandler.Delete).Methods("DELETE")

	apiRouter.HandleFunc("/regression-sets/{id}/test-cases", caseHandler.ListBySet).Methods("GET")
	apiRouter.HandleFunc("/regression-sets/{id}/test-cases", caseHandler.Create).Methods("POST")
	apiRouter.HandleFunc("/regression-sets/{id}/import", caseHandler.Import).Methods("POST")
	apiRouter.HandleFunc("/test-cases/{id}", caseHandler.GetByID).Methods("GET")
	apiRouter.HandleFunc("/test-cases/{id}", caseHandler.Update).Methods("PUT")
	apiRouter.HandleFunc("/test-cases/{id}", caseHandler.Delete).Methods("DELETE")

	apiRouter.HandleFunc("/runs", runHandler.Start).Methods("POST")
	apiRouter.HandleFunc("/runs", runHandler.History).Methods("GET")
	apiRouter.HandleFunc("/runs/{id}", runHandler.GetByID).Methods("GET")
	apiRouter.HandleFunc("/runs/{id}/next", runHandler.Next).Methods("GET")
	apiRouter.HandleFunc("/runs/{id}/cancel", runHandler.Cancel).Methods("POST")
	apiRouter.HandleFunc("/run-items/{id}", runHandler.RecordResult).Methods("PATCH")

	apiRouter.HandleFunc("/dashboard/overview", dashboardHandler.Overview).Methods("GET")
	apiRouter.HandleFunc("/dashboard/recent-runs", dashboardHandler.RecentRuns).Methods("GET")
	apiRouter.HandleFunc("/dashboard/trend", dashboardHandler.PassFailTrend).Methods("GET")
	apiRouter.HandleFunc("/dashboard/platforms", dashboardHandler.PlatformStats).Methods("GET")
	apiRouter.HandleFunc("/dashboard/module-failures", dashboardHandler.ModuleFailures).Methods("GET")
	apiRouter.HandleFunc("/dashboard/slow-tests", dashboardHandler.SlowTests).Methods("GET")

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info(ctx, "server listening", logger.Fields{
			"address": addr,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "server error", logger.Fields{
				"error": err.Error(),
			})
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info(ctx, "shutting down server", nil)

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info(ctx, "server stopped", nil)
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/datatrust/preference-management/internal"
	"github.com/datatrust/preference-management/internal/auth"
	authPostgres "github.com/datatrust/preference-management/internal/auth/postgres"
	"github.com/datatrust/preference-management/internal/company"
	companyPostgres "github.com/datatrust/preference-management/internal/company/postgres"
	"github.com/datatrust/preference-management/internal/core/events"
	"github.com/datatrust/preference-management/internal/datatype"
	datatypePostgres "github.com/datatrust/preference-management/internal/datatype/postgres"
	"github.com/datatrust/preference-management/internal/preference"
	preferencePostgres "github.com/datatrust/preference-management/internal/preference/postgres"
	"github.com/datatrust/preference-management/internal/token"
	tokenPostgres "github.com/datatrust/preference-management/internal/token/postgres"
	"github.com/datatrust/preference-management/internal/transport/rest"
	"github.com/datatrust/preference-management/internal/transport/swagger"
	"github.com/datatrust/preference-management/internal/user"
	userPostgres "github.com/datatrust/preference-management/internal/user/postgres"
	"github.com/datatrust/preference-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := swagger.ValidateDocument(context.Background(), "./api/openapi.yml"); err != nil {
		deps.Logger.Warn("openapi document invalid, swagger UI may be broken", "error", err)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	cfg := deps.Config
	lg := deps.Logger

	eventBus := events.NewEventBus(lg)

	tokenGen := &auth.JWTTokenGenerator{
		AccessTokenSecret:  []byte(cfg.Security.AccessTokenSecret),
		RefreshTokenSecret: []byte(cfg.Security.RefreshTokenSecret),
		AccessTokenTTL:     cfg.Security.AccessTokenDuration,
		RefreshTokenTTL:    cfg.Security.RefreshTokenDuration,
	}

	tokenRepo := tokenPostgres.NewTokenRepository(deps.GormDB)
	tokenService := token.NewService(tokenRepo, eventBus, lg)
	tokenHandler := token.NewHandler(tokenService)

	authRepo := authPostgres.NewRepository(deps.GormDB)
	authService := auth.NewService(authRepo, tokenGen, tokenService, int64(cfg.Tokens.SignupGrant), cfg.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	userRepo := userPostgres.NewUserRepository(deps.GormDB)
	userService := user.NewService(userRepo)
	userHandler := user.NewHandler(userService)

	companyRepo := companyPostgres.NewCompanyRepository(deps.GormDB)
	companyService := company.NewService(companyRepo, lg)
	companyHandler := company.NewHandler(companyService)

	dataTypeRepo := datatypePostgres.NewDataTypeRepository(deps.GormDB)
	dataTypeService := datatype.NewService(dataTypeRepo, lg)
	dataTypeHandler := datatype.NewHandler(dataTypeService)

	preferenceRepo := preferencePostgres.NewPreferenceRepository(deps.GormDB)
	preferenceService := preference.NewService(preferenceRepo, companyRepo, dataTypeService, eventBus, lg)
	preferenceHandler := preference.NewHandler(preferenceService)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, authHandler, userHandler, companyHandler, dataTypeHandler, preferenceHandler, tokenHandler, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGormDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGormDB wraps the already-open pgx connection pool so the ORM and
// raw sqlx queries share one pool.
func initGormDB(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{
		Conn: db.DB,
	}), &gorm.Config{})
}

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

	"github.com/asc-academy/evaluation-portal/internal"
	"github.com/asc-academy/evaluation-portal/internal/auth"
	authpg "github.com/asc-academy/evaluation-portal/internal/auth/postgres"
	"github.com/asc-academy/evaluation-portal/internal/department"
	departmentpg "github.com/asc-academy/evaluation-portal/internal/department/postgres"
	"github.com/asc-academy/evaluation-portal/internal/evaluation"
	evaluationpg "github.com/asc-academy/evaluation-portal/internal/evaluation/postgres"
	"github.com/asc-academy/evaluation-portal/internal/report"
	"github.com/asc-academy/evaluation-portal/internal/transport"
	"github.com/asc-academy/evaluation-portal/internal/transport/rest"
	"github.com/asc-academy/evaluation-portal/internal/user"
	userpg "github.com/asc-academy/evaluation-portal/internal/user/postgres"
	"github.com/asc-academy/evaluation-portal/internal/userdata"
	userdatapg "github.com/asc-academy/evaluation-portal/internal/userdata/postgres"
	"github.com/asc-academy/evaluation-portal/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
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

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

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
		deps.Logger.Info("Received signal, shutting down...", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	base := transport.NewBaseHandler(deps.Logger)

	userRepo := userpg.NewUserRepository(deps.GormDB)
	deptRepo := departmentpg.NewDepartmentRepository(deps.GormDB)
	evalRepo := evaluationpg.NewEvaluationRepository(deps.GormDB)
	dataRepo := userdatapg.NewUserDataRepository(deps.GormDB)
	authRepo := authpg.NewAuthRepository(deps.GormDB)

	tokenGen := auth.NewJWTTokenGenerator(deps.Config.Security.JWTSecret, deps.Config.Security.TokenDuration)

	authService := auth.NewService(authRepo, tokenGen, deps.Config.Security.BCryptCost, deps.Logger)
	deptService := department.NewService(deptRepo, deps.Logger)
	userService := user.NewService(userRepo, deptService, deps.Config.Security.BCryptCost, deps.Logger)
	evalService := evaluation.NewService(evalRepo, userRepo, deps.Logger)
	dataService := userdata.NewService(dataRepo, userRepo, deps.Logger)
	reportService := report.NewService(evalRepo, userRepo, deptService, deps.Logger)

	handlers := rest.Handlers{
		Auth:       auth.NewHandler(base, authService),
		Access:     auth.NewAccess(base, deps.Logger),
		Department: department.NewHandler(base, deptService),
		User:       user.NewHandler(base, userService),
		Evaluation: evaluation.NewHandler(base, evalService),
		UserData:   userdata.NewHandler(base, dataService),
		Report:     report.NewHandler(base, reportService),
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, handlers, deps.Config.Server.AllowedOrigins, deps.Logger)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Level, config.Logging.Format)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
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

// initGorm wraps the already-open pgx connection. TranslateError turns
// driver-level unique violations into gorm.ErrDuplicatedKey, which the
// services map to the "already exists" responses.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
	})
}

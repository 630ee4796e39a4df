package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-payroll-go/internal/config"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/master/position"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/overtime"
	"github.com/cmlabs-hris/hris-payroll-go/internal/domain/payroll"
	"github.com/cmlabs-hris/hris-payroll-go/internal/fixtures"
	appHTTP "github.com/cmlabs-hris/hris-payroll-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/logger"
	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/ratetable"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/hris-payroll-go/internal/repository/sqlite"
	employeeService "github.com/cmlabs-hris/hris-payroll-go/internal/service/employee"
	payrollService "github.com/cmlabs-hris/hris-payroll-go/internal/service/payroll"
	"go.uber.org/zap"
)

type repositories struct {
	payroll    payroll.PayrollRepository
	payPeriod  payroll.PayPeriodRepository
	employee   employee.EmployeeRepository
	position   position.PositionRepository
	attendance attendance.AttendanceRepository
	overtime   overtime.OvertimeRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		OutputPath: cfg.Log.Output,
		Format:     cfg.Log.Format,
	})
	if err != nil {
		log.Fatal("Error creating logger: ", err)
	}
	defer zapLogger.Sync()

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("Server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rateTables, err := ratetable.Load(cfg.Payroll.RateTablePath)
	if err != nil {
		return err
	}
	zapLogger.Info("Rate tables loaded",
		zap.String("path", cfg.Payroll.RateTablePath),
		zap.Strings("versions", rateTables.Versions()))

	repos, err := openRepositories(ctx, cfg, zapLogger)
	if err != nil {
		return err
	}
	defer repos.close()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)

	payrollSvc := payrollService.NewPayrollService(
		repos.payroll,
		repos.payPeriod,
		repos.employee,
		repos.position,
		repos.attendance,
		repos.overtime,
		rateTables,
		zapLogger,
		payrollService.Options{Workers: cfg.Payroll.Workers, Location: cfg.Payroll.Location},
	)
	employeeSvc := employeeService.NewEmployeeService(repos.employee, zapLogger)

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	employeeHandler := appHTTP.NewEmployeeHandler(employeeSvc)

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		logLevel = slog.LevelInfo
	}
	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.App.AllowedOrigins,
			Version:        cfg.App.Version,
			Env:            cfg.App.Env,
			LogLevel:       logLevel,
		},
		JWTService,
		payrollHandler,
		employeeHandler,
	)

	scheduler := cron.NewScheduler(zapLogger)
	if cfg.Payroll.CronInterval > 0 {
		cron.NewPayrollJobs(repos.payPeriod, payrollSvc, zapLogger).RegisterJobs(scheduler, cfg.Payroll.CronInterval)
		scheduler.Start()
		defer scheduler.Stop()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		zapLogger.Info("Server running", zap.String("addr", server.Addr), zap.String("env", cfg.App.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	zapLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openRepositories(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) (*repositories, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		if cfg.Database.SQLitePath != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(cfg.Database.SQLitePath), 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory: %w", err)
			}
		}
		store, err := sqlite.New(cfg.Database.SQLitePath)
		if err != nil {
			return nil, err
		}
		if cfg.App.SeedDemoCompany != "" {
			now := time.Now()
			ids, err := fixtures.SeedCompanyDefaults(ctx, store, cfg.App.SeedDemoCompany, now.AddDate(0, -1, 0), now)
			if err != nil {
				store.Close()
				return nil, err
			}
			zapLogger.Info("Seeded company defaults",
				zap.String("company_id", cfg.App.SeedDemoCompany),
				zap.Int("positions", len(ids.PositionIDs)),
				zap.Int("pay_periods", len(ids.PayPeriodIDs)))
		}
		zapLogger.Info("Using sqlite store", zap.String("path", cfg.Database.SQLitePath))
		return &repositories{
			payroll:    store.Payroll(),
			payPeriod:  store.PayPeriods(),
			employee:   store.Employees(),
			position:   store.Positions(),
			attendance: store.Attendances(),
			overtime:   store.Overtime(),
			close:      func() { store.Close() },
		}, nil

	default:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.Database.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := postgresql.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		zapLogger.Info("Connected to PostgreSQL", zap.Int32("max_conns", cfg.Database.MaxConns))
		return &repositories{
			payroll:    postgresql.NewPayrollRepository(db),
			payPeriod:  postgresql.NewPayPeriodRepository(db),
			employee:   postgresql.NewEmployeeRepository(db),
			position:   postgresql.NewPositionRepository(db),
			attendance: postgresql.NewAttendanceRepository(db),
			overtime:   postgresql.NewOvertimeRepository(db),
			close:      db.Close,
		}, nil
	}
}

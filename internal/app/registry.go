package app

import (
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/heyyrintu/hrms-sub003/internal/attendance"
	"github.com/heyyrintu/hrms-sub003/internal/employee"
	"github.com/heyyrintu/hrms-sub003/internal/employeesalary"
	"github.com/heyyrintu/hrms-sub003/internal/messaging/kafka"
	"github.com/heyyrintu/hrms-sub003/internal/payrollrun"
	"github.com/heyyrintu/hrms-sub003/internal/rbac"
	"github.com/heyyrintu/hrms-sub003/internal/rbac/infra"
	"github.com/heyyrintu/hrms-sub003/internal/salarystructure"
	"github.com/heyyrintu/hrms-sub003/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func payrollConfigFromEnv() payrollrun.Config {
	cfg := payrollrun.Config{}
	if v, err := strconv.Atoi(os.Getenv("PAYROLL_WORKER_CONCURRENCY")); err == nil {
		cfg.Concurrency = v
	}
	if v, err := time.ParseDuration(os.Getenv("PAYROLL_FACT_TIMEOUT")); err == nil {
		cfg.FactTimeout = v
	}
	if v, err := strconv.Atoi(os.Getenv("PAYROLL_FACT_RETRIES")); err == nil {
		cfg.FactRetries = v
	}
	if v, err := time.ParseDuration(os.Getenv("PAYROLL_STALE_PROCESSING_AFTER")); err == nil {
		cfg.StaleProcessingAfter = v
	}
	return cfg
}

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	attendanceRepo := attendance.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	employeeSalaryRepo := employeesalary.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	runRepo := payrollrun.NewRepository(gormDB)
	structureRepo := salarystructure.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	attendanceService := attendance.NewService(db, attendanceRepo)
	employeeSalaryService := employeesalary.NewService(db, employeeSalaryRepo, structureRepo)
	structureService := salarystructure.NewService(db, structureRepo)

	runService := payrollrun.NewServiceWithOutbox(
		db,
		runRepo,
		outboxRepo,
		payrollrun.Providers{
			Assignments: employeeSalaryService,
			Facts:       attendanceService,
			OtRates:     attendanceService,
			Directory:   employee.NewDirectory(employeeRepo),
			Numbers:     &counterPayslipNumberer{counters: counterRepo},
		},
		rdb,
		payrollConfigFromEnv(),
	)

	// --- Handlers ---
	attendanceHandler := attendance.NewHandler(attendanceService)
	employeeSalaryHandler := employeesalary.NewHandler(employeeSalaryService)
	rbacHandler := rbac.NewHandler(rbacService)
	runHandler := payrollrun.NewHandlerWithRedis(runService, rdb)
	structureHandler := salarystructure.NewHandler(structureService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		attendance.RegisterRoutes(api, attendanceHandler, rbacService)
		employeesalary.RegisterRoutes(api, employeeSalaryHandler, rbacService)
		payrollrun.RegisterRoutes(api, runHandler, rbacService, rdb)
		salarystructure.RegisterRoutes(api, structureHandler, rbacService)
	}

	rbac.RegisterRoutes(router, rbacHandler)

	return nil
}

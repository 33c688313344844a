package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/heyyrintu/hrms-sub003/internal/bootstrap"
	"github.com/heyyrintu/hrms-sub003/internal/employeesalary"
	"github.com/heyyrintu/hrms-sub003/internal/events"
	"github.com/heyyrintu/hrms-sub003/internal/messaging/kafka/consumer"
	"github.com/heyyrintu/hrms-sub003/internal/salarystructure"
	"github.com/heyyrintu/hrms-sub003/internal/shared/connection"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer reacts to employee lifecycle events with default salary
// assignments and audits payroll run lifecycle events.
func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	structureRepo := salarystructure.NewRepository(gormDB)
	employeeSalaryRepo := employeesalary.NewRepository(gormDB)
	employeeSalaryService := employeesalary.NewService(sqlDB, employeeSalaryRepo, structureRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	salaryConsumer := employeesalary.NewEmployeeCreatedConsumer(
		kafkaBroker,
		"hrms-employee-salary",
		employeeSalaryService,
		structureRepo,
		logger,
	)
	salaryConsumer.Start(ctx)

	lifecycleReader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{kafkaBroker},
		Topic:       events.PayrollRunLifecycleTopic,
		GroupID:     "hrms-payroll-audit",
		StartOffset: kafkago.FirstOffset,
	})
	defer lifecycleReader.Close()

	go consumer.ConsumeRunLifecycle(ctx, lifecycleReader, bootstrap.NewStdoutAuditLogger(), logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}

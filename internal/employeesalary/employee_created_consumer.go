package employeesalary

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	employeesalaryerrors "github.com/heyyrintu/hrms-sub003/internal/employeesalary/errors"
	"github.com/heyyrintu/hrms-sub003/internal/events"
	"github.com/heyyrintu/hrms-sub003/internal/salarystructure"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// DefaultStructureName is the structure a new hire is assigned until HR
// sets a real one. Companies without it simply skip auto-assignment.
const DefaultStructureName = "Default"

type EmployeeCreatedConsumer struct {
	reader     *kafka.Reader
	service    Service
	structures salarystructure.Repository
	logger     *zap.Logger
}

func NewEmployeeCreatedConsumer(
	broker string,
	groupID string,
	service Service,
	structures salarystructure.Repository,
	logger ...*zap.Logger,
) *EmployeeCreatedConsumer {
	l := zap.L().Named("employeesalary.consumer")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employeesalary.consumer")
	}

	return &EmployeeCreatedConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:        []string{broker},
			Topic:          events.EmployeeCreatedTopic,
			GroupID:        groupID,
			CommitInterval: time.Second,
			StartOffset:    kafka.FirstOffset,
		}),
		service:    service,
		structures: structures,
		logger:     l,
	}
}

func (c *EmployeeCreatedConsumer) Start(ctx context.Context) {
	go func() {
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Error("consume employee_created failed", zap.Error(err))
				continue
			}

			var event events.EmployeeCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				c.logger.Error("decode employee_created event failed", zap.Error(err))
				if commitErr := c.reader.CommitMessages(ctx, msg); commitErr != nil {
					c.logger.Error("commit invalid employee_created event failed", zap.Error(commitErr))
				}
				continue
			}

			if err := c.assignDefaultStructure(ctx, event); err != nil {
				if isUniqueAssignmentViolation(err) {
					c.logger.Warn("salary assignment already exists for event, skipping",
						zap.String("employee_id", event.EmployeeID),
						zap.String("company_id", event.CompanyID),
					)
					if commitErr := c.reader.CommitMessages(ctx, msg); commitErr != nil {
						c.logger.Error("commit duplicate employee_created event failed", zap.Error(commitErr))
					}
					continue
				}

				c.logger.Error("create default salary assignment failed",
					zap.String("employee_id", event.EmployeeID),
					zap.String("company_id", event.CompanyID),
					zap.Error(err),
				)
				continue
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error("commit employee_created event failed", zap.Error(err))
				continue
			}
		}
	}()
}

func (c *EmployeeCreatedConsumer) assignDefaultStructure(ctx context.Context, event events.EmployeeCreatedEvent) error {
	structures, err := c.structures.FindAllByCompany(ctx, event.CompanyID)
	if err != nil {
		return err
	}

	var defaultID string
	for _, structure := range structures {
		if structure.IsActive && structure.Name == DefaultStructureName {
			defaultID = structure.ID.String()
			break
		}
	}
	if defaultID == "" {
		c.logger.Info("company has no default salary structure, skipping auto-assignment",
			zap.String("company_id", event.CompanyID),
		)
		return nil
	}

	effectiveFrom := time.Now().UTC().Format(dateLayout)
	_, err = c.service.Create(ctx, event.CompanyID, CreateEmployeeSalaryRequest{
		EmployeeID:        event.EmployeeID,
		SalaryStructureID: defaultID,
		BasePay:           0,
		EffectiveFrom:     effectiveFrom,
	})
	if err != nil {
		return err
	}

	c.logger.Info("default salary assignment created from employee_created event",
		zap.String("employee_id", event.EmployeeID),
		zap.String("company_id", event.CompanyID),
	)
	return nil
}

func isUniqueAssignmentViolation(err error) bool {
	if errors.Is(err, employeesalaryerrors.ErrAssignmentAlreadyExists) ||
		errors.Is(err, employeesalaryerrors.ErrOverlappingAssignment) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_employee_salary_effective"
	}

	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_employee_salary_effective")
}

package employeesalary

import (
	"errors"
	"strings"

	employeesalaryerrors "github.com/heyyrintu/hrms-sub003/internal/employeesalary/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeesalaryerrors.ErrAssignmentNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "uq_employee_salary_effective" {
			return employeesalaryerrors.ErrAssignmentAlreadyExists
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "uq_employee_salary_effective") {
		return employeesalaryerrors.ErrAssignmentAlreadyExists
	}

	return err
}

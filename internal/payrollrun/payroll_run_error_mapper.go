package payrollrun

import (
	"errors"
	"strings"

	payrollrunerrors "github.com/heyyrintu/hrms-sub003/internal/payrollrun/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return payrollrunerrors.ErrRunNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "idx_runs_company_period" {
			return payrollrunerrors.ErrRunExists
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "idx_runs_company_period") {
		return payrollrunerrors.ErrRunExists
	}

	return err
}

package salarystructure

import (
	"errors"
	"strings"

	salarystructureerrors "github.com/heyyrintu/hrms-sub003/internal/salarystructure/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return salarystructureerrors.ErrStructureNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" && pgErr.ConstraintName == "idx_structures_company_name" {
			return salarystructureerrors.ErrStructureNameExists
		}
	}

	errMsg := strings.ToLower(err.Error())
	if strings.Contains(errMsg, "duplicate key value") && strings.Contains(errMsg, "idx_structures_company_name") {
		return salarystructureerrors.ErrStructureNameExists
	}

	return err
}

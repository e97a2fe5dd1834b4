package implementation

import (
	"errors"

	"pattern-sphere-be/pkg/apperror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// translateError turns a unique violation into DuplicateName so that a
// name race lost at insert time reports the same error as the pre-check.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if (errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return &apperror.Error{Kind: apperror.KindDuplicateName, Message: "name already in use", Err: err}
	}
	return err
}

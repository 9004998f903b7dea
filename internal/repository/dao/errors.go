package dao

import (
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrDealNotFound    = errors.New("deal not found")
	ErrPickupCodeTaken = errors.New("pickup code already in use")
	ErrDuplicate       = errors.New("record already exists")
	ErrStatusConflict  = errors.New("order status changed concurrently")
	ErrDealConflict    = errors.New("deal changed concurrently")
)

// uniqueViolation reports whether err is a unique-constraint failure from
// postgres or sqlite, and the text that names the violated constraint.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return pgErr.ConstraintName + " " + pgErr.Message, true
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) &&
		(liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return liteErr.Error(), true
	}

	return "", false
}

func translateInsertErr(err error) error {
	detail, ok := uniqueViolation(err)
	if !ok {
		return err
	}
	if strings.Contains(detail, "pickup_code") {
		return ErrPickupCodeTaken
	}

	return ErrDuplicate
}

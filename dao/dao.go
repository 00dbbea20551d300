// dao/dao.go
package dao

import (
	"errors"

	"gorm.io/gorm"

	"github.com/ucook/accessflow/db"
	af_errors "github.com/ucook/accessflow/errors"
)

// translate maps driver errors onto the domain taxonomy. notFound and
// conflict may be nil when the operation cannot produce them.
func translate(op string, err error, notFound, conflict error) error {
	switch {
	case err == nil:
		return nil
	case notFound != nil && errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case conflict != nil && db.IsUniqueViolation(err):
		return conflict
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return af_errors.Conflict("Record is still referenced by other data")
	}
	return af_errors.Database(op, err)
}

// unscoped preloads tombstoned users, which history keeps referencing.
func unscoped(tx *gorm.DB) *gorm.DB {
	return tx.Unscoped()
}

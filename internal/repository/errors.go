// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// session manager and handlers to distinguish between different failure
// scenarios without inspecting driver errors.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert violates a unique constraint,
// such as a second session for the same client and parking lot.
var ErrConflict = errors.New("conflict")

// ErrCapacity is returned when a change to a lot's available counter
// would leave it outside [0, count_places].
var ErrCapacity = errors.New("capacity out of range")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a MySQL duplicate key violation.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

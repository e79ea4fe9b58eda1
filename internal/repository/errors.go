// Package repository holds the SQL data access layer.  The sentinel errors
// below let handlers tell expected failures apart from store faults: they
// map to validation, conflict and not-found responses, while any other error
// is a server error.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrEmailExists is returned when registering an email that is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrItemNotFound is returned when no item of the requested kind has the id.
var ErrItemNotFound = errors.New("item not found")

// ErrAlreadyClaimed is returned when the claimed item is no longer pending.
var ErrAlreadyClaimed = errors.New("item already claimed")

// ErrUnknownUser is returned when a user_id or claimant_id references no user.
var ErrUnknownUser = errors.New("unknown user")

// MySQL server error numbers.
const (
	mysqlDupEntry        = 1062
	mysqlNoReferencedRow = 1452
)

// isUniqueViolation reports whether err is a unique/primary key violation
// from either supported driver.
func isUniqueViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDupEntry
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
		return strings.Contains(se.Error(), "UNIQUE constraint failed")
	}
	return false
}

// isForeignKeyViolation reports whether err is a foreign key violation on
// insert from either supported driver.
func isForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlNoReferencedRow
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY ||
			strings.Contains(se.Error(), "FOREIGN KEY constraint failed")
	}
	return false
}

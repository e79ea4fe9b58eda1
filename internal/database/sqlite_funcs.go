package database

import (
	"database/sql/driver"
	"strings"
	"sync"

	"modernc.org/sqlite"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// registerSQLiteFunctions replaces SQLite's ASCII-only lower() with a
// Unicode one so that LOWER(col) LIKE LOWER(?) folds "Über" like MySQL
// does.  Functions are registered process-wide and apply to connections
// opened afterwards.
func registerSQLiteFunctions() error {
	registerOnce.Do(func() {
		registerErr = sqlite.RegisterDeterministicScalarFunction("lower", 1, unicodeLower)
	})
	return registerErr
}

func unicodeLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	}
	return args[0], nil
}

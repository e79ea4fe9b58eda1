package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/iliyamo/lost-and-found/internal/config"
)

// Dialect selects the DDL flavour used by EnsureSchema.
type Dialect string

const (
	DialectMySQL  Dialect = "mysql"
	DialectSQLite Dialect = "sqlite"
)

// DialectFor maps a configured driver name to its Dialect.
func DialectFor(driver string) Dialect {
	if driver == config.DriverMySQL {
		return DialectMySQL
	}
	return DialectSQLite
}

// The two item tables share every column except the variant date.  The
// claims table references an item by (item_kind, item_id); the unique key
// on that pair allows at most one claim row per item.

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		email         VARCHAR(128) NOT NULL,
		password_hash VARCHAR(128) NOT NULL,
		location      VARCHAR(128) NULL,
		created_at    DATETIME NOT NULL,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	mysqlItemTable("lostitems", "date_lost"),
	mysqlItemTable("founditems", "date_found"),
	`CREATE TABLE IF NOT EXISTS claims (
		id          BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		item_kind   VARCHAR(8) NOT NULL,
		item_id     BIGINT UNSIGNED NOT NULL,
		claimant_id BIGINT UNSIGNED NOT NULL,
		message     TEXT NULL,
		status      VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at  DATETIME NOT NULL,
		UNIQUE KEY uq_claims_item (item_kind, item_id),
		KEY idx_claims_claimant (claimant_id),
		CONSTRAINT fk_claims_claimant FOREIGN KEY (claimant_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

func mysqlItemTable(table, dateCol string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title         VARCHAR(128) NOT NULL,
		description   VARCHAR(1024) NOT NULL,
		user_id       BIGINT UNSIGNED NOT NULL,
		location      VARCHAR(128) NOT NULL,
		%[2]s         DATE NOT NULL,
		category      VARCHAR(64) NULL,
		contact_email VARCHAR(128) NULL,
		status        VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at    DATETIME NOT NULL,
		KEY idx_%[1]s_user (user_id),
		CONSTRAINT fk_%[1]s_user FOREIGN KEY (user_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, table, dateCol)
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		location      TEXT,
		created_at    DATETIME NOT NULL
	)`,
	sqliteItemTable("lostitems", "date_lost"),
	sqliteItemTable("founditems", "date_found"),
	`CREATE TABLE IF NOT EXISTS claims (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		item_kind   TEXT NOT NULL CHECK (item_kind IN ('lost', 'found')),
		item_id     INTEGER NOT NULL,
		claimant_id INTEGER NOT NULL REFERENCES users (id),
		message     TEXT,
		status      TEXT NOT NULL DEFAULT 'pending',
		created_at  DATETIME NOT NULL,
		UNIQUE (item_kind, item_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_claims_claimant ON claims (claimant_id)`,
}

func sqliteItemTable(table, dateCol string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %[1]s (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		title         TEXT NOT NULL,
		description   TEXT NOT NULL,
		user_id       INTEGER NOT NULL REFERENCES users (id),
		location      TEXT NOT NULL,
		%[2]s         DATE NOT NULL,
		category      TEXT,
		contact_email TEXT,
		status        TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'finished')),
		created_at    DATETIME NOT NULL
	)`, table, dateCol)
}

// EnsureSchema creates the users, lostitems, founditems and claims tables
// when they do not exist yet.  It is safe to run on every start.
func EnsureSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	stmts := sqliteSchema
	if d == DialectMySQL {
		stmts = mysqlSchema
	}
	for _, s := range stmts {
		if _, err := db.ExecContext(ctx, s); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

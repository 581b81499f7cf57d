package service

import "fmt"

// DatabaseDialect provides database-specific SQL syntax. Only the pieces
// the ledger actually needs live here: insert-ignore for the dedup upsert
// and insert-or-update for mutable reference rows.
type DatabaseDialect interface {
	// InsertIgnoreSQL renders an insert that silently skips rows violating
	// the table's unique constraint. The affected-rows count tells the
	// caller whether the row was inserted or already present.
	InsertIgnoreSQL(tableName, insertClause, valuesClause, conflictColumns string) string

	// UpsertSQL renders an insert that updates the existing row on a
	// unique-constraint conflict.
	UpsertSQL(tableName, insertClause, valuesClause, conflictColumns, updateClause string) string
}

// GetDialect returns the appropriate dialect for the given driver name
func GetDialect(driverName string) DatabaseDialect {
	switch driverName {
	case "mysql":
		return &MySQLDialect{}
	case "postgres":
		return &PostgreSQLDialect{}
	case "sqlite3":
		return &SQLiteDialect{}
	default:
		return &SQLiteDialect{} // default fallback
	}
}

// MySQLDialect implements MySQL-specific SQL syntax
type MySQLDialect struct{}

func (d *MySQLDialect) InsertIgnoreSQL(tableName, insertClause, valuesClause, conflictColumns string) string {
	return fmt.Sprintf("INSERT IGNORE INTO %s (%s) VALUES (%s)", tableName, insertClause, valuesClause)
}

func (d *MySQLDialect) UpsertSQL(tableName, insertClause, valuesClause, conflictColumns, updateClause string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON DUPLICATE KEY UPDATE %s",
		tableName, insertClause, valuesClause, updateClause)
}

// PostgreSQLDialect implements PostgreSQL-specific SQL syntax
type PostgreSQLDialect struct{}

func (d *PostgreSQLDialect) InsertIgnoreSQL(tableName, insertClause, valuesClause, conflictColumns string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO NOTHING",
		tableName, insertClause, valuesClause, conflictColumns)
}

func (d *PostgreSQLDialect) UpsertSQL(tableName, insertClause, valuesClause, conflictColumns, updateClause string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		tableName, insertClause, valuesClause, conflictColumns, updateClause)
}

// SQLiteDialect implements SQLite-specific SQL syntax
type SQLiteDialect struct{}

func (d *SQLiteDialect) InsertIgnoreSQL(tableName, insertClause, valuesClause, conflictColumns string) string {
	return fmt.Sprintf("INSERT OR IGNORE INTO %s (%s) VALUES (%s)", tableName, insertClause, valuesClause)
}

func (d *SQLiteDialect) UpsertSQL(tableName, insertClause, valuesClause, conflictColumns, updateClause string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		tableName, insertClause, valuesClause, conflictColumns, updateClause)
}

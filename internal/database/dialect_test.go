package database

import (
	"testing"
)

func TestDialectProperties(t *testing.T) {
	tests := []struct {
		name                 string
		dialect              Dialect
		driverName           string
		supportsLastInsertId bool
		migrationsSubdir     string
	}{
		{
			name:                 "sqlite",
			dialect:              NewSQLiteDialect(),
			driverName:           "sqlite3",
			supportsLastInsertId: true,
			migrationsSubdir:     "sqlite",
		},
		{
			name:                 "postgres",
			dialect:              NewPostgresDialect(),
			driverName:           "postgres",
			supportsLastInsertId: false,
			migrationsSubdir:     "postgres",
		},
		{
			name:                 "mysql",
			dialect:              NewMySQLDialect(),
			driverName:           "mysql",
			supportsLastInsertId: true,
			migrationsSubdir:     "mysql",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.dialect.DriverName(); got != tt.driverName {
				t.Errorf("DriverName() = %v, want %v", got, tt.driverName)
			}
			if got := tt.dialect.SupportsLastInsertId(); got != tt.supportsLastInsertId {
				t.Errorf("SupportsLastInsertId() = %v, want %v", got, tt.supportsLastInsertId)
			}
			if got := tt.dialect.MigrationsSubdir(); got != tt.migrationsSubdir {
				t.Errorf("MigrationsSubdir() = %v, want %v", got, tt.migrationsSubdir)
			}
		})
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "sqlite keeps question marks",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM users WHERE id = ? AND email = ?",
			expected: "SELECT * FROM users WHERE id = ? AND email = ?",
		},
		{
			name:     "mysql keeps question marks",
			dialect:  NewMySQLDialect(),
			query:    "INSERT INTO focus_sessions (user_id) VALUES (?)",
			expected: "INSERT INTO focus_sessions (user_id) VALUES (?)",
		},
		{
			name:     "postgres numbers placeholders",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM users WHERE id = ? AND email = ?",
			expected: "SELECT * FROM users WHERE id = $1 AND email = $2",
		},
		{
			name:     "postgres with no placeholders",
			dialect:  NewPostgresDialect(),
			query:    "SELECT COUNT(*) FROM users",
			expected: "SELECT COUNT(*) FROM users",
		},
		{
			name:     "postgres many placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO focus_sessions (user_id, session_type, start_time) VALUES (?, ?, ?)",
			expected: "INSERT INTO focus_sessions (user_id, session_type, start_time) VALUES ($1, $2, $3)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestTrimForReturning(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected string
	}{
		{
			name:     "trailing semicolon",
			query:    "INSERT INTO users (username) VALUES ($1);",
			expected: "INSERT INTO users (username) VALUES ($1)",
		},
		{
			name:     "trailing whitespace and semicolon",
			query:    "INSERT INTO users (username) VALUES ($1); \n",
			expected: "INSERT INTO users (username) VALUES ($1)",
		},
		{
			name:     "no semicolon",
			query:    "INSERT INTO users (username) VALUES ($1)",
			expected: "INSERT INTO users (username) VALUES ($1)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := trimForReturning(tt.query); got != tt.expected {
				t.Errorf("trimForReturning() = %q, want %q", got, tt.expected)
			}
		})
	}
}

package database

import (
	"strings"
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "sqlite"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "postgres"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "mysql"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM study_sessions WHERE session_id = ?",
			expected: "SELECT * FROM study_sessions WHERE session_id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM study_sessions WHERE session_id = ?",
			expected: "SELECT * FROM study_sessions WHERE session_id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO problem_runs (session_id, problem_number) VALUES (?, ?)",
			expected: "INSERT INTO problem_runs (session_id, problem_number) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE study_sessions SET problem_count = ?, correct_count = ? WHERE session_id = ?",
			expected: "UPDATE study_sessions SET problem_count = ?, correct_count = ? WHERE session_id = ?",
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

func TestUpsertSessionQuery(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		want    string
	}{
		{"SQLite", NewSQLiteDialect(), "ON CONFLICT(session_id) DO UPDATE"},
		{"PostgreSQL", NewPostgresDialect(), "ON CONFLICT (session_id) DO UPDATE"},
		{"MySQL", NewMySQLDialect(), "ON DUPLICATE KEY UPDATE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query := tt.dialect.UpsertSessionQuery()
			if !strings.HasPrefix(query, "INSERT INTO study_sessions") {
				t.Errorf("UpsertSessionQuery() = %v, want INSERT INTO study_sessions", query)
			}
			if !strings.Contains(query, tt.want) {
				t.Errorf("UpsertSessionQuery() = %v, want %v", query, tt.want)
			}
			if got := strings.Count(query, "?"); got != 7 {
				t.Errorf("UpsertSessionQuery() has %d placeholders, want 7", got)
			}
		})
	}
}

func TestMySQLDSN(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"user:pass@tcp(localhost:3306)/rr", "user:pass@tcp(localhost:3306)/rr?parseTime=true"},
		{"user:pass@tcp(localhost:3306)/rr?charset=utf8mb4", "user:pass@tcp(localhost:3306)/rr?charset=utf8mb4&parseTime=true"},
		{"user:pass@tcp(localhost:3306)/rr?parseTime=false", "user:pass@tcp(localhost:3306)/rr?parseTime=false"},
	}

	for _, tt := range tests {
		if got := NewMySQLDialect().DSN(DialectConfig{URL: tt.url}); got != tt.want {
			t.Errorf("DSN(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{"sqlite", "sqlite3", false},
		{"", "sqlite3", false},
		{"PostgreSQL", "postgres", false},
		{"mysql", "mysql", false},
		{"oracle", "", true},
	}

	for _, tt := range tests {
		dialect, err := DialectFor(tt.driver)
		if (err != nil) != tt.wantErr {
			t.Errorf("DialectFor(%q) error = %v, wantErr %v", tt.driver, err, tt.wantErr)
			continue
		}
		if err == nil && dialect.DriverName() != tt.want {
			t.Errorf("DialectFor(%q) = %v, want %v", tt.driver, dialect.DriverName(), tt.want)
		}
	}
}

func TestSplitStatements(t *testing.T) {
	content := `-- header comment
CREATE TABLE a (id INTEGER);

CREATE TABLE b (
    id INTEGER -- inline is kept
);
`
	got := splitStatements(content)
	if len(got) != 2 {
		t.Fatalf("splitStatements() returned %d statements, want 2: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (id INTEGER)" {
		t.Errorf("first statement = %q", got[0])
	}
}

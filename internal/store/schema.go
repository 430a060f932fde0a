package store

import (
	"context"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
)

// Table and column names shared by the repositories.
const (
	tableProfiles    = "profiles"
	tableWords       = "words"
	tableResults     = "test_results"
	tableWordStats   = "word_stats"
	tableLLMRequests = "llm_requests"
)

// schemaStatements returns the CREATE statements for the given dialect.
// MySQL does not accept multiple statements per Exec, so each table is
// its own statement everywhere.
func schemaStatements(d string) []string {
	autoID := "INTEGER PRIMARY KEY AUTOINCREMENT"
	switch d {
	case dialect.Postgres:
		autoID = "BIGSERIAL PRIMARY KEY"
	case dialect.MySQL:
		autoID = "BIGINT AUTO_INCREMENT PRIMARY KEY"
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id VARCHAR(64) PRIMARY KEY,
			email VARCHAR(255) NOT NULL UNIQUE,
			full_name VARCHAR(255) NOT NULL DEFAULT '',
			password_hash VARCHAR(255) NOT NULL DEFAULT '',
			is_admin INTEGER NOT NULL DEFAULT 0,
			created_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS words (
			id VARCHAR(64) PRIMARY KEY,
			de VARCHAR(255) NOT NULL,
			en VARCHAR(255) NOT NULL DEFAULT '',
			grade INTEGER NOT NULL,
			unit INTEGER NOT NULL,
			station INTEGER NOT NULL,
			cloze_de VARCHAR(1024) NOT NULL DEFAULT '',
			cloze_en VARCHAR(1024) NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS test_results (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(64) NOT NULL,
			user_email VARCHAR(255) NOT NULL DEFAULT '',
			grade INTEGER NOT NULL,
			unit INTEGER NOT NULL,
			station INTEGER NOT NULL,
			total INTEGER NOT NULL,
			correct INTEGER NOT NULL,
			percent INTEGER NOT NULL,
			mode VARCHAR(32) NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS word_stats (
			word_id VARCHAR(64) NOT NULL,
			user_id VARCHAR(64) NOT NULL,
			attempts INTEGER NOT NULL DEFAULT 0,
			correct INTEGER NOT NULL DEFAULT 0,
			last_seen_at BIGINT NOT NULL,
			PRIMARY KEY (word_id, user_id)
		)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS llm_requests (
			id %s,
			provider VARCHAR(64) NOT NULL,
			model VARCHAR(128) NOT NULL,
			purpose VARCHAR(64) NOT NULL,
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			latency_ms BIGINT NOT NULL DEFAULT 0,
			success INTEGER NOT NULL DEFAULT 0,
			error_message VARCHAR(1024) NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL
		)`, autoID),
	}
}

// indexStatements are only issued where CREATE INDEX IF NOT EXISTS exists.
func indexStatements(d string) []string {
	if d == dialect.MySQL {
		return nil
	}
	return []string{
		"CREATE INDEX IF NOT EXISTS words_course ON words (grade, unit, station)",
		"CREATE INDEX IF NOT EXISTS test_results_user ON test_results (user_id, created_at)",
	}
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := append(schemaStatements(s.dialect), indexStatements(s.dialect)...)
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			name := strings.Fields(stmt)
			return fmt.Errorf("%s: %w", strings.Join(name[:min(len(name), 6)], " "), err)
		}
	}
	return nil
}

package database

import (
	"context"
	"database/sql"
	"testing"

	"wazmeow/internal/infra/database"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func setupTestDB(t *testing.T) *bun.DB {
	sqldb, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	return db
}

func TestWazMeowSessionModel_CreateTable(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()

	_, err := db.NewCreateTable().
		Model((*database.WazMeowSessionModel)(nil)).
		IfNotExists().
		Exec(ctx)
	require.NoError(t, err, "Should be able to create wazmeow_sessions table")

	var count int
	err = db.NewSelect().
		ColumnExpr("COUNT(*)").
		TableExpr("sqlite_master").
		Where("type = ? AND name = ?", "table", "wazmeow_sessions").
		Scan(ctx, &count)
	require.NoError(t, err, "Failed to query sqlite_master")
	assert.Equal(t, 1, count, "wazmeow_sessions table should exist")

	rows, err := db.QueryContext(ctx, "PRAGMA table_info(wazmeow_sessions)")
	require.NoError(t, err)
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var cid int
		var name, dataType string
		var notNull, pk int
		var defaultValue sql.NullString

		err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk)
		require.NoError(t, err)
		columns[name] = true
	}

	expectedColumns := []string{
		"id", "user_id", "phone_number", "source", "status", "wa_jid", "qr_code",
		"proxy_url", "reconnect_attempts", "detected", "voluntarily_disconnected",
		"created_at", "updated_at", "last_message_at",
	}

	for _, col := range expectedColumns {
		assert.True(t, columns[col], "Column %s should exist", col)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO wazmeow_sessions (id, user_id, source, status, created_at, updated_at)
		VALUES ('test-id', 'user-1', 'web', 'disconnected', datetime('now'), datetime('now'))
	`)
	require.NoError(t, err, "Should be able to insert data")

	var sessionCount int
	err = db.NewSelect().
		ColumnExpr("COUNT(*)").
		TableExpr("wazmeow_sessions").
		Where("user_id = ?", "user-1").
		Scan(ctx, &sessionCount)
	require.NoError(t, err, "Should be able to read from wazmeow_sessions")
	assert.Equal(t, 1, sessionCount, "Should find the inserted session")
}

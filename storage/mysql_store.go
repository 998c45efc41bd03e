package storage

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLStorage struct {
	*sqlStorage
}

func NewMySQLStorage(ctx context.Context, dsn string) (*MySQLStorage, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s, err := newSQLStorage(ctx, db, `
		CREATE TABLE IF NOT EXISTS kv_store (
			name VARCHAR(191) PRIMARY KEY,
			value LONGTEXT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`INSERT INTO kv_store (name, value, updated_at) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)`,
	)
	if err != nil {
		return nil, err
	}
	return &MySQLStorage{sqlStorage: s}, nil
}

// storage/sql_store.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// sqlStorage 是 sqlite / mysql 共用的键值表实现，方言差异只在建表和upsert语句
type sqlStorage struct {
	db        *sql.DB
	upsertSQL string
}

const (
	selectValueSQL = `SELECT value FROM kv_store WHERE name = ?`
	deleteValueSQL = `DELETE FROM kv_store WHERE name = ?`
)

func newSQLStorage(ctx context.Context, db *sql.DB, schema, upsert string) (*sqlStorage, error) {
	// 创建表结构
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}
	return &sqlStorage{db: db, upsertSQL: upsert}, nil
}

func (s *sqlStorage) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, selectValueSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *sqlStorage) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.upsertSQL, key, value, time.Now().UTC().Unix())
	return err
}

func (s *sqlStorage) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, deleteValueSQL, key)
	return err
}

func (s *sqlStorage) Close() error {
	return s.db.Close()
}

// Package postgres implements the storage contracts on PostgreSQL through
// database/sql and lib/pq.
package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"

	"wecelebrate-notifier/internal/storage"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

// Store implements every storage contract on one connection pool.
type Store struct {
	db *sql.DB
}

var (
	_ storage.GlobalTemplateStore = (*Store)(nil)
	_ storage.SiteTemplateStore   = (*Store)(nil)
	_ storage.RuleStore           = (*Store)(nil)
	_ storage.HistoryStore        = (*Store)(nil)
)

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// mapError translates driver errors into storage sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return storage.ErrDuplicate
	}
	return err
}

// expectOne turns a zero-row UPDATE or DELETE into ErrNotFound.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// nullableJSON marshals v, storing SQL NULL for a nil pointer.
func nullableJSON(v interface{}, isNil bool) (interface{}, error) {
	if isNil {
		return nil, nil
	}
	return json.Marshal(v)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Package sqlstore implements store.CardStore on top of database/sql.
//
// Queries are built with squirrel so that one implementation serves every
// supported database; the differences (placeholder syntax, row locking, error
// codes) are captured by a Dialect supplied by the driver package
// (internal/platform/postgres or internal/platform/sqlite).
package sqlstore

import (
	sq "github.com/Masterminds/squirrel"
)

// Dialect describes how a particular database speaks SQL.
type Dialect struct {
	// Name identifies the dialect in logs, e.g. "postgres".
	Name string

	// Placeholder is the bind parameter format (sq.Dollar, sq.Question).
	Placeholder sq.PlaceholderFormat

	// LockClause is appended to the SELECT that opens a schedule update, e.g.
	// "FOR UPDATE". Databases that serialize writers on their own leave it empty.
	LockClause string

	// MapError translates driver errors into store errors. It must return nil
	// for nil and should wrap store.ErrDuplicate for unique violations.
	MapError func(error) error
}

func (d Dialect) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(d.Placeholder)
}

func (d Dialect) mapError(err error) error {
	if d.MapError == nil {
		return err
	}
	return d.MapError(err)
}

package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ColumnSet is the lower-cased column names of one table.
type ColumnSet map[string]bool

func (c ColumnSet) Has(col string) bool { return c[strings.ToLower(col)] }

// Columns reads the column set of table from information_schema in one round
// trip. An empty set means the table does not exist in the current schema.
func Columns(ctx context.Context, q Querier, table string) (ColumnSet, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = DATABASE()
		  AND table_name = ?
	`, table)
	if err != nil {
		return ColumnSet{}, fmt.Errorf("read columns of %s: %w", table, err)
	}
	defer rows.Close()

	out := ColumnSet{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return out, err
		}
		out[strings.ToLower(strings.TrimSpace(name))] = true
	}
	return out, rows.Err()
}

// SelectNullable returns the column itself, or NULL when absent.
func (c ColumnSet) SelectNullable(col string) string {
	if c.Has(col) {
		return col
	}
	return "NULL"
}

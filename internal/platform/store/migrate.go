package store

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
)

//go:embed migrations.sql
var schemaSQL string

// Statements splits the embedded schema into single statements, dropping comments
func Statements() []string {
	var (
		out []string
		cur strings.Builder
	)
	for _, line := range strings.Split(schemaSQL, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
		if strings.HasSuffix(trimmed, ";") {
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		}
	}
	if rest := strings.TrimSpace(cur.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}

// Migrate applies the schema inside one transaction, every statement is idempotent
func Migrate(ctx context.Context, tx TxRunner) error {
	stmts := Statements()
	return tx.Tx(ctx, func(q RowQuerier) error {
		for i, s := range stmts {
			if _, err := q.Exec(ctx, s); err != nil {
				return fmt.Errorf("migrate statement %d: %w", i+1, err)
			}
		}
		return nil
	})
}

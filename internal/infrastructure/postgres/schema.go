package postgres

import (
	"context"
	_ "embed"
)

//go:embed schema/schema.sql
var schemaSQL string

// EnsureSchema crea tablas e índices si no existen. Es idempotente.
func EnsureSchema(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, schemaSQL); err != nil {
		return wrap("ensure schema", err)
	}
	return nil
}

package db

import (
	"context"
	_ "embed"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL for every table the services query.
func Schema() string {
	return schemaSQL
}

// Migrate applies the schema. Statements are idempotent.
func Migrate(ctx context.Context, q Querier) error {
	_, err := q.Exec(ctx, schemaSQL)
	return err
}

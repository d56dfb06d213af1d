// Package migrations embeds the SQL schema files.
package migrations

import "embed"

// FS holds the versioned migration files in golang-migrate naming.
//
//go:embed *.sql
var FS embed.FS

// Schema is the idempotent DDL applied at server startup.
const Schema = "000001_create_transactions.up.sql"

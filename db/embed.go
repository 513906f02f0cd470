// Package db provides embedded database schema and seed files.
package db

import _ "embed"

// Schema contains the DDL statements for all application tables plus the
// order/delivery status seed rows.
//
//go:embed migrations/001_schema.sql
var Schema string

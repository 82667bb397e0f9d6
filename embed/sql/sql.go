package sql

import _ "embed"

// Schema creates the task tables.
//
//go:embed schema.sql
var Schema string

package db

import _ "embed"

// Schema creates the payment tables. It is idempotent.
//
//go:embed schema.sql
var Schema string

const DropSchema = `
DROP TABLE IF EXISTS payment_logs;
DROP TABLE IF EXISTS payment_orders;
`

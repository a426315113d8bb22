package db

import (
	_ "embed"
)

// Schema creates the tables the service reads and writes. The managed database is
// provisioned out of band, so only test fixtures apply it.
//
//go:embed schema.sql
var Schema string

// Package chaindb holds all the migrations for the chain journal database
package chaindb

import "github.com/uptrace/bun/migrate"

// Migrations are the chain journal migrations, applied in registration order.
var Migrations = migrate.NewMigrations()

package main

import (
	"time"

	"github.com/acksell/docustore/config"
	"github.com/acksell/docustore/database"
)

// openDatabase opens the data directory at dir (the -db flag value),
// applying cfg's schema-persistence interval.
func openDatabase(dir string, cfg config.Config) (*database.Database, error) {
	interval := time.Duration(cfg.SchemaPersistenceIntervalSeconds * float64(time.Second))
	return database.Open(database.Options{
		DataDir:                   dir,
		SchemaPersistenceInterval: interval,
	})
}

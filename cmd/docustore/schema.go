package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/acksell/docustore/config"
)

func runSchema(cfg config.Config) error {
	fs := flag.NewFlagSet("schema", flag.ExitOnError)
	dbDir := fs.String("db", cfg.DataDir, "data directory")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: docustore schema <collection>")
	}
	collectionName := fs.Arg(0)

	db, err := openDatabase(*dbDir, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	c, err := db.Collection(collectionName)
	if err != nil {
		return err
	}

	return c.Schema().ExportYAML(os.Stdout)
}

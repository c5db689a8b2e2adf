package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/acksell/docustore/config"
)

func runDrop(cfg config.Config) error {
	fs := flag.NewFlagSet("drop", flag.ExitOnError)
	dbDir := fs.String("db", cfg.DataDir, "data directory")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: docustore drop <collection>")
	}
	collectionName := fs.Arg(0)

	db, err := openDatabase(*dbDir, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Drop(context.Background(), collectionName); err != nil {
		return err
	}
	fmt.Printf("dropped %q\n", collectionName)
	return nil
}

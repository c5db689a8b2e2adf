package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/acksell/docustore/config"
)

func runGet(cfg config.Config) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	dbDir := fs.String("db", cfg.DataDir, "data directory")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: docustore get <collection> <id>")
	}
	collectionName := fs.Arg(0)
	id, err := uuid.Parse(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("parse id: %w", err)
	}

	db, err := openDatabase(*dbDir, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	c, err := db.Collection(collectionName)
	if err != nil {
		return err
	}

	doc, err := c.Get(context.Background(), id)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("document %s not found", id)
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

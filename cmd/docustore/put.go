package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/acksell/docustore/config"
	"github.com/acksell/docustore/value"
)

func runPut(cfg config.Config) error {
	fs := flag.NewFlagSet("put", flag.ExitOnError)
	dbDir := fs.String("db", cfg.DataDir, "data directory")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: docustore put <collection> < document.json")
	}
	collectionName := fs.Arg(0)

	body, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read document from stdin: %w", err)
	}
	doc, err := value.DocumentFromJSON(body)
	if err != nil {
		return err
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

	ctx := context.Background()
	var id fmt.Stringer
	if _, hasID := doc.Get("_id"); hasID {
		if err := c.Update(ctx, doc); err != nil {
			return err
		}
		idVal, _ := doc.Get("_id")
		guid, _ := idVal.AsGuid()
		id = guid
	} else {
		guid, err := c.Insert(ctx, doc)
		if err != nil {
			return err
		}
		id = guid
	}

	fmt.Println(id.String())
	return nil
}

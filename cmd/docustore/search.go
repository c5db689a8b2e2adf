package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/tidwall/pretty"

	"github.com/acksell/docustore/collection"
	"github.com/acksell/docustore/config"
)

func runSearch(cfg config.Config) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	dbDir := fs.String("db", cfg.DataDir, "data directory")
	query := fs.String("q", "", "query string (default match-all)")
	sortBy := fs.String("sort", "", "sort field, optionally prefixed with - for descending")
	topN := fs.Int("top", 0, "max hits considered (default 100000)")
	itemsPerPage := fs.Int("per-page", 0, "items per page (default 10)")
	page := fs.Int("page", 0, "page number, 1-indexed (default 1)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("usage: docustore search [-q query] [-sort field] [-page n] <collection>")
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

	res, err := c.Search(context.Background(), collection.Criteria{
		Query:        *query,
		SortByField:  *sortBy,
		TopN:         *topN,
		ItemsPerPage: *itemsPerPage,
		PageNumber:   *page,
	})
	if err != nil {
		return err
	}

	out, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode search result: %w", err)
	}
	os.Stdout.Write(pretty.Pretty(out))
	return nil
}

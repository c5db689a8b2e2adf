// docustore is a CLI for a local docustore data directory, structured
// exactly like dynamodb/cmd/ddb: os.Args[1] subcommand dispatch, a
// flag.FlagSet per subcommand, plain-text usage banner.
//
// # Commands
//
//	docustore put <collection>      Insert/update a document read as JSON from stdin
//	docustore get <collection> <id> Print a document as JSON
//	docustore search <collection>   Run a query and print a SearchResult as JSON
//	docustore drop <collection>     Drop a collection
//	docustore schema <collection>   Print a collection's live schema as YAML
package main

import (
	"fmt"
	"os"

	"github.com/acksell/docustore/config"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	os.Args = append([]string{os.Args[0]}, os.Args[2:]...)

	cfg := config.Load()

	var err error
	switch cmd {
	case "put":
		err = runPut(cfg)
	case "get":
		err = runGet(cfg)
	case "search":
		err = runSearch(cfg)
	case "drop":
		err = runDrop(cfg)
	case "schema":
		err = runSchema(cfg)
	case "help", "-h", "--help":
		printUsage()
		return
	case "version", "-v", "--version":
		fmt.Printf("docustore version %s\n", version)
		return
	default:
		fmt.Fprintf(os.Stderr, "docustore: unknown command %q\n\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "docustore %s: %v\n", cmd, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`docustore - schema-flexible document store with full-text search

Usage:
  docustore <command> [flags] [args]

Commands:
  put <collection>       Insert/update a document read as JSON from stdin
  get <collection> <id>  Print a document as JSON
  search <collection>    Run a query and print a SearchResult as JSON
  drop <collection>      Drop a collection
  schema <collection>    Print a collection's live schema as YAML

Flags (put/get/search/drop/schema):
  -db string   data directory (default "./data", or docustore.yaml's dataDir)

Examples:
  echo '{"title":"Hello"}' | docustore put widgets
  docustore get widgets 3fa85f64-5717-4562-b3fc-2c963f66afa6
  docustore search -q 'title:Hello' -sort -title widgets

Configuration (optional):
  Create docustore.yaml for defaults:

    dataDir: ./data
    schemaPersistenceIntervalSeconds: 1.0
    logLevel: info
    logFormat: logfmt

Run 'docustore <command> --help' for more information on a command.`)
}

// Command pb is the pricebook CLI: registry lookups, spreadsheet ingestion,
// the local registry server and the event log viewer.
//
// Usage:
//
//	pb                              Show help
//	pb search <query>               Resolve candidates for a query
//	pb results -type T -id ID       Trade-grouped results for one candidate
//	pb ingest <file.xlsx|file.xls>  Validate and store a price book
//	pb rows                         Show the stored price book
//	pb serve                        Serve the registry API from the stored price book
//	pb analytics                    Supplier ranking and product impact
//	pb events                       JSONL event log viewer
package main

import (
	"fmt"
	"os"
)

const usage = `pb - pricebook CLI

Usage:
  pb <command> [flags]

Commands:
  search      Resolve a query into trade, supplier and product candidates
  results     Fetch trade-grouped products for one candidate
  ingest      Validate a spreadsheet and replace the stored price book
  rows        Show the stored price book
  serve       Serve the registry API from the stored price book
  analytics   Supplier ranking and product impact
  events      JSONL event log viewer

Environment:
  PRICEBOOK_CONFIG        Config file (default ~/.pricebook/config.json)
  PRICEBOOK_REGISTRY_URL  Registry base URL
  PRICEBOOK_DB_PATH       SQLite database path
  PRICEBOOK_SERVER_ADDR   Listen address for 'pb serve'

Run 'pb <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "search":
		runSearch()
	case "results":
		runResults()
	case "ingest":
		runIngest()
	case "rows":
		runRows()
	case "serve":
		runServe()
	case "analytics":
		runAnalytics()
	case "events":
		runEvents()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "pb: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}

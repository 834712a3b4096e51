package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/abelbrown/pricebook/internal/catalog"
	"github.com/abelbrown/pricebook/internal/grouping"
)

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	fs.Parse(os.Args[1:])

	q := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if q == "" {
		fmt.Fprintln(os.Stderr, "usage: pb search <query>")
		os.Exit(1)
	}

	cfg := loadConfig()
	client := newClient(cfg)

	t0 := time.Now()
	cands, err := client.Search(context.Background(), q)
	if err != nil {
		fatalf("search %q: %v", q, err)
	}

	fmt.Printf("%d candidates for %q in %v\n", len(cands), q, time.Since(t0).Round(time.Millisecond))
	if len(cands) == 0 {
		fmt.Println("No Matches Found in Registry")
		return
	}
	t := newTable("Type", "ID", "Name")
	for _, c := range cands {
		t.Row(string(c.Kind), c.ID, truncate(c.DisplayName, 60))
	}
	fmt.Println(t.String())
}

func runResults() {
	fs := flag.NewFlagSet("results", flag.ExitOnError)
	kind := fs.String("type", "", "Candidate type: trade, supplier or product")
	id := fs.String("id", "", "Candidate ID")
	name := fs.String("name", "", "Candidate display name (defaults to the ID)")
	fs.Parse(os.Args[1:])

	k := catalog.Kind(*kind)
	if !k.Valid() || *id == "" {
		fmt.Fprintln(os.Stderr, "usage: pb results -type trade|supplier|product -id ID [-name NAME]")
		os.Exit(1)
	}
	if *name == "" {
		*name = *id
	}

	cfg := loadConfig()
	client := newClient(cfg)

	sel := catalog.NewSelection(catalog.Candidate{Kind: k, ID: *id, DisplayName: *name})
	groups, err := client.Results(context.Background(), sel)
	if err != nil {
		fatalf("results for %s %q: %v", k, *id, err)
	}

	tbl := grouping.Group(groups)
	if tbl.Empty() {
		fmt.Println("No products listed for this selection")
		return
	}

	cols := grouping.Visible(tbl.Columns)
	for _, section := range grouping.Sections(tbl.Rows) {
		fmt.Printf("\nTrade Info  %s\n", section[0].TradeCode)
		headers := make([]string, len(cols))
		for i, c := range cols {
			headers[i] = c.Title
		}
		t := newTable(headers...)
		for _, row := range section {
			cells := make([]string, len(cols))
			for i, c := range cols {
				cells[i] = grouping.FormatCell(c.Role, row.Value(c.Key))
				if c.Role == grouping.RolePrice && row.IsCheapestInSet {
					cells[i] += " BEST"
				}
			}
			t.Row(cells...)
		}
		fmt.Println(t.String())
	}
	fmt.Printf("\n%d products, cheapest %s\n", len(tbl.Rows), grouping.FormatPrice(tbl.MinPrice))
}

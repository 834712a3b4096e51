package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/pricebook/internal/registry"
)

func runAnalytics() {
	fs := flag.NewFlagSet("analytics", flag.ExitOnError)
	trade := fs.String("trade", "", "Trade code for the product impact report")
	supplier := fs.String("supplier", "", "Supplier for the product impact report")
	fs.Parse(os.Args[1:])

	if (*trade == "") != (*supplier == "") {
		fmt.Fprintln(os.Stderr, "usage: pb analytics [-trade CODE -supplier NAME]")
		os.Exit(1)
	}

	cfg := loadConfig()
	client := newClient(cfg)

	var ranking, impact []registry.Record
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		recs, err := client.SupplierRanking(ctx)
		if err != nil {
			return fmt.Errorf("supplier ranking: %w", err)
		}
		ranking = recs
		return nil
	})
	if *trade != "" {
		g.Go(func() error {
			recs, err := client.ProductImpact(ctx, *trade, *supplier)
			if err != nil {
				return fmt.Errorf("product impact: %w", err)
			}
			impact = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("Supplier ranking (%d)\n", len(ranking))
	fmt.Println(recordTable(ranking))
	if *trade != "" {
		fmt.Printf("\nProduct impact: %s / %s (%d)\n", *trade, *supplier, len(impact))
		fmt.Println(recordTable(impact))
	}
}

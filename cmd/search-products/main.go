package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/catalog"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/filter"
)

func main() {
	query := flag.String("q", "", "search query")
	sortKey := flag.String("sort", "recommended", "recommended, newest, price-low or price-high")
	sizes := flag.String("sizes", "", "comma separated sizes")
	colors := flag.String("colors", "", "comma separated colors")
	brands := flag.String("brands", "", "comma separated brands")
	minPrice := flag.Float64("min", 0, "minimum price")
	maxPrice := flag.Float64("max", 0, "maximum price")
	asJSON := flag.Bool("json", false, "print the result as JSON")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	client := catalog.NewClient(cfg.Catalog, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	products, err := client.Search(ctx, *query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}

	conf := filter.Configuration{
		Filters: filter.Filters{
			Sizes:  splitList(*sizes),
			Colors: splitList(*colors),
			Brands: splitList(*brands),
		},
		SortKey: domain.ParseSortKey(*sortKey),
	}
	for _, v := range []float64{*minPrice, *maxPrice} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			fmt.Fprintln(os.Stderr, "-min and -max must be finite numbers")
			os.Exit(2)
		}
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["min"] || set["max"] {
		conf.PriceRange = filter.PriceRange{Min: *minPrice, Max: *maxPrice, Bounded: true}
		if !set["max"] {
			conf.PriceRange.Max = math.MaxFloat64
		}
	}
	visible := conf.Apply(products)

	if *asJSON {
		out, _ := json.MarshalIndent(map[string]interface{}{
			"products":   visible,
			"categories": filter.DeriveAvailableCategories(products),
			"sizes":      filter.DeriveAvailableSizes(products),
			"brands":     filter.DeriveAvailableBrands(products),
			"colors":     filter.DeriveAvailableColors(products),
		}, "", "  ")
		fmt.Println(string(out))
		return
	}

	fmt.Printf("🔍 %q: %d results, %d after filters (sort: %s)\n\n", *query, len(products), len(visible), conf.SortKey)
	for _, p := range visible {
		price := fmt.Sprintf("%.0f", p.Price)
		if p.OriginalPrice > p.Price {
			price += fmt.Sprintf(" (was %.0f, -%.0f%%)", p.OriginalPrice, p.Discount)
		}
		fmt.Printf("  %-8s %-40s %-15s %s\n", p.ID, truncate(p.Name, 40), p.Brand, price)
		if len(p.Sizes) > 0 {
			fmt.Printf("           sizes: %s\n", strings.Join(p.Sizes, ", "))
		}
	}

	fmt.Println("\nFacets:")
	for _, c := range filter.DeriveAvailableCategories(products) {
		fmt.Printf("  category %-20s %d\n", c.Name, c.Count)
	}
	fmt.Printf("  sizes:  %s\n", strings.Join(filter.DeriveAvailableSizes(products), ", "))
	fmt.Printf("  brands: %s\n", strings.Join(filter.DeriveAvailableBrands(products), ", "))
	fmt.Printf("  colors: %s\n", strings.Join(filter.DeriveAvailableColors(products), ", "))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

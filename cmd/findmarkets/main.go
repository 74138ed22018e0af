// Command findmarkets searches the Polymarket Gamma API for markets matching
// a query and prints their token IDs, for building the [polymarket.markets]
// mapping in the detector's configuration.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Healzy1/poly-latency-arb-bot/internal/platform/polymarket"
)

func main() {
	gammaHost := flag.String("gamma", "https://gamma-api.polymarket.com", "Gamma API root")
	query := flag.String("q", "", "search query (e.g. \"bitcoin\")")
	slug := flag.String("slug", "", "look up a single market by slug instead")
	limit := flag.Int("limit", 25, "maximum results")
	activeOnly := flag.Bool("active", true, "only show active, unresolved markets")
	flag.Parse()

	if *query == "" && *slug == "" {
		fmt.Fprintln(os.Stderr, "usage: findmarkets -q <query> | -slug <slug>")
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := polymarket.NewGammaClient(*gammaHost)

	if *slug != "" {
		market, err := client.GetMarketBySlug(ctx, *slug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "lookup failed: %v\n", err)
			os.Exit(1)
		}
		printMarket(market.Question, market.Slug, market.TokenIDs, market.Outcomes)
		return
	}

	markets, err := client.SearchMarkets(ctx, *query, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "search failed: %v\n", err)
		os.Exit(1)
	}

	shown := 0
	for _, m := range markets {
		if *activeOnly && (!m.Active || m.Closed) {
			continue
		}
		printMarket(m.Question, m.Slug, m.TokenIDs, m.Outcomes)
		shown++
	}

	if shown == 0 {
		fmt.Println("no matching markets")
	}
}

func printMarket(question, slug string, tokenIDs, outcomes []string) {
	fmt.Printf("%s\n  slug: %s\n", question, slug)
	for i, tok := range tokenIDs {
		outcome := "?"
		if i < len(outcomes) {
			outcome = outcomes[i]
		}
		fmt.Printf("  %-4s token_id: %s\n", outcome, tok)
	}
	fmt.Println(strings.Repeat("-", 60))
}

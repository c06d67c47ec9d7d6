package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"contractlens/internal/store"
)

func main() {
	dbPath := flag.String("db", "./output/history.db", "History database path")
	limit := flag.Int("limit", 20, "Maximum runs to list")
	flag.Parse()

	history, err := store.OpenHistory(*dbPath)
	if err != nil {
		log.Fatalf("open history: %v", err)
	}
	defer history.Close()

	records, err := history.Recent(*limit)
	if err != nil {
		log.Fatalf("list runs: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tSOURCE\tPARTY\tRISK\tSCORE\tISSUES\tARTIFACT\tERROR")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\n",
			rec.CreatedAt, rec.SourcePath, rec.Party, rec.RiskLevel,
			rec.RiskScore, rec.IssueCount, rec.ArtifactPath, rec.Error)
	}
	w.Flush()
}

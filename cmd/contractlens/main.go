package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"contractlens/internal/config"
	"contractlens/internal/pipeline"
	"contractlens/internal/report"
	"contractlens/internal/risk"
	"contractlens/internal/store"
	"contractlens/internal/telemetry"
)

func main() {
	partyType := flag.String("party-type", string(risk.PartyA), "Perspective to review from: party_a or party_b")
	outputPath := flag.String("output", "", "Also write the full result JSON to this path")
	configPath := flag.String("config", "", "YAML config file")
	pdfPath := flag.String("pdf", "", "Also render the report as PDF to this path")
	keepPartial := flag.Bool("keep-partial", false, "Keep gathered reviewer findings in the result when integration fails")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: contractlens [flags] <contract-file>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	contractPath := flag.Arg(0)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	}
	if *keepPartial {
		cfg.KeepPartialOnIntegrationFailure = true
	}
	party := risk.PartyPerspective(*partyType)
	if !risk.ValidParty(party) {
		log.Fatalf("invalid --party-type %q (want party_a or party_b)", *partyType)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdown, err := telemetry.Init(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	defer shutdown(context.Background())

	pipe := pipeline.New(cfg)
	result, runErr := pipe.RunWithProgress(ctx, pipeline.RunRequest{Path: contractPath, Party: party}, func(stage, message string) {
		log.Printf("[%s] %s", stage, message)
	})

	if runErr != nil {
		stage := pipeline.StageNameFromError(runErr)
		// An ingestion failure leaves nothing worth keeping; an
		// integration failure still persists the error-shaped result.
		if stage != pipeline.StageIngest {
			persist(cfg, result)
		}
		fmt.Fprintf(os.Stderr, "review failed (%s): %v\npath: %s\n", stage, runErr, contractPath)
		os.Exit(1)
	}

	artifact := persist(cfg, result)
	markdown := report.BuildMarkdown(result)
	fmt.Println(markdown)
	if artifact != "" {
		log.Printf("result written artifact=%s", artifact)
	}

	if *outputPath != "" {
		if err := store.WriteJSON(*outputPath, result); err != nil {
			log.Fatalf("write output: %v", err)
		}
	}
	if *pdfPath != "" {
		pdf, err := report.NewPDFRenderer().Render(ctx, markdown)
		if err != nil {
			log.Fatalf("render pdf: %v", err)
		}
		if err := os.WriteFile(*pdfPath, pdf, 0o644); err != nil {
			log.Fatalf("write pdf: %v", err)
		}
		log.Printf("pdf written path=%s", *pdfPath)
	}
}

// persist writes the artifact and records the run in the history index.
// Neither failure aborts the review output; they only log.
func persist(cfg *config.Config, result risk.PipelineResult) string {
	artifact, err := store.NewResultStore(cfg.OutputDir).Save(result)
	if err != nil {
		log.Printf("persist result failed: %v", err)
		return ""
	}
	history, err := store.OpenHistory(cfg.HistoryDB)
	if err != nil {
		log.Printf("open history failed: %v", err)
		return artifact
	}
	defer history.Close()
	if _, err := history.Record(result, artifact); err != nil {
		log.Printf("record history failed: %v", err)
	}
	return artifact
}

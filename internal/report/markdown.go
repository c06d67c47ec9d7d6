// Package report renders the final risk assessment for humans: markdown
// for the console and --output flows, HTML/PDF for sharing.
package report

import (
	"fmt"
	"strings"
	"time"

	"contractlens/internal/risk"
)

const notAvailable = "not available"

// BuildMarkdown renders a PipelineResult as a markdown report. Absent
// report fields render as an explicit "not available" marker.
func BuildMarkdown(result risk.PipelineResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Contract Risk Review\n\n")
	fmt.Fprintf(&b, "- Source: %s\n", sanitize(result.SourcePath))
	fmt.Fprintf(&b, "- Party perspective: `%s`\n", result.PartyPerspective)
	fmt.Fprintf(&b, "- Date: %s\n\n", time.Now().Format(time.RFC3339))

	if result.Error != "" {
		fmt.Fprintf(&b, "> FAILED: %s\n\n", sanitize(result.Error))
	}

	fmt.Fprintf(&b, "## Reviewer Findings\n\n")
	fmt.Fprintf(&b, "| Reviewer | Status | Issues |\n|----------|--------|--------|\n")
	for _, key := range risk.ReviewerOrder {
		resp, ok := result.ExpertResponses[key]
		switch {
		case !ok:
			fmt.Fprintf(&b, "| %s | %s | — |\n", key, notAvailable)
		case resp.Status == risk.ExpertAbsent:
			fmt.Fprintf(&b, "| %s | absent (%s) | — |\n", key, sanitize(orMarker(resp.Reason)))
		default:
			fmt.Fprintf(&b, "| %s | ok | %d |\n", key, len(resp.Issues))
		}
	}
	fmt.Fprintf(&b, "\n")

	if len(result.MergedIssues) > 0 {
		fmt.Fprintf(&b, "## Issues\n\n")
		fmt.Fprintf(&b, "| # | Category | Risk | Clause | Description | Suggestion |\n")
		fmt.Fprintf(&b, "|---|----------|------|--------|-------------|------------|\n")
		for i, issue := range result.MergedIssues {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
				i+1, issue.Category, issue.RiskLevel,
				sanitize(orMarker(issue.ClauseReference)),
				sanitize(orMarker(issue.Description)),
				sanitize(orMarker(issue.Suggestion)))
		}
		fmt.Fprintf(&b, "\n")
	}

	if result.Report != nil {
		writeReportSections(&b, result.Report)
	}
	return b.String()
}

func writeReportSections(b *strings.Builder, report *risk.AnalysisReport) {
	fmt.Fprintf(b, "## Overall Assessment\n\n")
	fmt.Fprintf(b, "- Risk score: %d / 100\n", report.RiskScore)
	fmt.Fprintf(b, "- Risk level: %s\n\n", orMarker(string(report.RiskLevel)))

	sum := report.Summary
	fmt.Fprintf(b, "| Total | High | Medium | Low | Favorable | Illegal |\n")
	fmt.Fprintf(b, "|-------|------|--------|-----|-----------|--------|\n")
	fmt.Fprintf(b, "| %d | %d | %d | %d | %d | %d |\n\n",
		sum.TotalIssues, sum.UnfavorableHigh, sum.UnfavorableMedium,
		sum.UnfavorableLow, sum.FavorableClauses, sum.IllegalClauses)

	fmt.Fprintf(b, "### Key Risks\n\n")
	writeList(b, report.Detail.KeyRisks)
	fmt.Fprintf(b, "### Favorable Points\n\n")
	writeList(b, report.Detail.FavorablePoints)
	fmt.Fprintf(b, "### Impact Analysis\n\n%s\n\n", sanitize(orMarker(report.Detail.ImpactAnalysis)))
	fmt.Fprintf(b, "### Optimization Suggestions\n\n")
	writeList(b, report.Detail.OptimizationSuggestions)

	fmt.Fprintf(b, "## Recommendation\n\n")
	fmt.Fprintf(b, "- Signing advice: %s\n\n", sanitize(orMarker(report.Recommendation.SigningAdvice)))
	fmt.Fprintf(b, "### Negotiation Points\n\n")
	writeList(b, report.Recommendation.NegotiationPoints)
	fmt.Fprintf(b, "### Risk Mitigation\n\n")
	writeList(b, report.Recommendation.RiskMitigation)
}

func writeList(b *strings.Builder, items []string) {
	if len(items) == 0 {
		fmt.Fprintf(b, "- %s\n\n", notAvailable)
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", sanitize(item))
	}
	fmt.Fprintf(b, "\n")
}

func orMarker(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}

// sanitize keeps cell text from breaking the markdown tables.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

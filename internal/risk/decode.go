package risk

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseRiskLevel maps a wire value onto a RiskLevel. Absent or
// unrecognized values default to LOW.
func ParseRiskLevel(v string) RiskLevel {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "HIGH":
		return RiskHigh
	case "MEDIUM", "MID":
		return RiskMedium
	case "LOW":
		return RiskLow
	default:
		return RiskLow
	}
}

func ParseCategory(v string) Category {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "LEGAL":
		return CategoryLegal
	case "BUSINESS":
		return CategoryBusiness
	case "FORMAT":
		return CategoryFormat
	default:
		return CategoryOther
	}
}

// IssuesFromPayload decodes a normalized reviewer payload into issues.
// Reviewers return either a bare JSON array of issue objects or an
// object carrying the array under "issues". The fallback category is
// applied when an issue does not name its own.
func IssuesFromPayload(payload any, fallback Category) ([]Issue, error) {
	var items []any
	switch v := payload.(type) {
	case []any:
		items = v
	case map[string]any:
		raw, ok := v["issues"]
		if !ok {
			return nil, fmt.Errorf("payload has no issues field")
		}
		items, ok = raw.([]any)
		if !ok {
			return nil, fmt.Errorf("issues field is not an array")
		}
	default:
		return nil, fmt.Errorf("unexpected payload type %T", payload)
	}

	issues := make([]Issue, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		issue := Issue{
			Category:             fallback,
			RiskLevel:            ParseRiskLevel(stringField(m, "risk_level")),
			ClauseReference:      stringField(m, "clause_reference", "clause"),
			Description:          stringField(m, "description"),
			LegalBasis:           stringField(m, "legal_basis"),
			ImpactAnalysis:       stringField(m, "impact_analysis"),
			BusinessOptimization: stringField(m, "business_optimization"),
			Suggestion:           stringField(m, "suggestion", "remediation_suggestion"),
		}
		if c := stringField(m, "category"); c != "" {
			issue.Category = ParseCategory(c)
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// ReportFromPayload decodes a normalized integration payload into an
// AnalysisReport. Every field is optional: missing or mistyped values
// stay at their zero value and render as "not available" downstream.
// Only a non-object payload is an error.
func ReportFromPayload(payload any) (*AnalysisReport, error) {
	m, ok := payload.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected payload type %T", payload)
	}
	report := AnalysisReport{
		RiskScore: clampScore(intField(m, "risk_score")),
	}
	if v := stringField(m, "risk_level"); v != "" {
		report.RiskLevel = ParseRiskLevel(v)
	}
	if sum, ok := m["summary"].(map[string]any); ok {
		report.Summary = SummaryCounts{
			TotalIssues:       intField(sum, "total_issues"),
			UnfavorableHigh:   intField(sum, "unfavorable_high"),
			UnfavorableMedium: intField(sum, "unfavorable_medium"),
			UnfavorableLow:    intField(sum, "unfavorable_low"),
			FavorableClauses:  intField(sum, "favorable_clauses"),
			IllegalClauses:    intField(sum, "illegal_clauses"),
		}
	}
	if det, ok := m["detail"].(map[string]any); ok {
		report.Detail = ReportDetail{
			KeyRisks:                stringListField(det, "key_risks"),
			FavorablePoints:         stringListField(det, "favorable_points"),
			ImpactAnalysis:          stringField(det, "impact_analysis"),
			OptimizationSuggestions: stringListField(det, "optimization_suggestions"),
		}
	}
	if rec, ok := m["recommendation"].(map[string]any); ok {
		report.Recommendation = Recommendation{
			SigningAdvice:     stringField(rec, "signing_advice"),
			NegotiationPoints: stringListField(rec, "negotiation_points"),
			RiskMitigation:    stringListField(rec, "risk_mitigation"),
		}
	}
	return &report, nil
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	default:
		return 0
	}
}

func stringListField(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}

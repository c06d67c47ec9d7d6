package risk

import "testing"

func TestIssuesFromPayloadBareArray(t *testing.T) {
	payload := []any{
		map[string]any{"category": "legal", "risk_level": "high", "description": "无限责任条款", "clause": "第3条"},
		map[string]any{"description": "no level given"},
	}
	issues, err := IssuesFromPayload(payload, CategoryLegal)
	if err != nil {
		t.Fatalf("IssuesFromPayload: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("got %d issues", len(issues))
	}
	if issues[0].Category != CategoryLegal || issues[0].RiskLevel != RiskHigh {
		t.Fatalf("first issue: %+v", issues[0])
	}
	if issues[0].ClauseReference != "第3条" {
		t.Fatalf("clause fallback key not read: %+v", issues[0])
	}
	if issues[1].RiskLevel != RiskLow {
		t.Fatalf("missing risk level must default to LOW, got %s", issues[1].RiskLevel)
	}
}

func TestIssuesFromPayloadIssuesKey(t *testing.T) {
	payload := map[string]any{"issues": []any{map[string]any{"description": "x", "category": "weird"}}}
	issues, err := IssuesFromPayload(payload, CategoryBusiness)
	if err != nil {
		t.Fatalf("IssuesFromPayload: %v", err)
	}
	if issues[0].Category != CategoryOther {
		t.Fatalf("unrecognized category must map to OTHER, got %s", issues[0].Category)
	}
}

func TestIssuesFromPayloadRejectsNonList(t *testing.T) {
	if _, err := IssuesFromPayload(map[string]any{"content": "prose"}, CategoryFormat); err == nil {
		t.Fatal("expected error for payload without issues")
	}
	if _, err := IssuesFromPayload("prose", CategoryFormat); err == nil {
		t.Fatal("expected error for string payload")
	}
}

func TestReportFromPayloadDefaults(t *testing.T) {
	report, err := ReportFromPayload(map[string]any{})
	if err != nil {
		t.Fatalf("ReportFromPayload: %v", err)
	}
	if report.RiskScore != 0 || report.RiskLevel != "" {
		t.Fatalf("empty payload must yield zero report, got %+v", report)
	}
}

func TestReportFromPayloadFull(t *testing.T) {
	payload := map[string]any{
		"risk_score": float64(150),
		"risk_level": "medium",
		"summary":    map[string]any{"total_issues": float64(4), "unfavorable_high": float64(1)},
		"detail": map[string]any{
			"key_risks":       []any{"liability cap missing"},
			"impact_analysis": "significant exposure",
		},
		"recommendation": map[string]any{"signing_advice": "negotiate first"},
	}
	report, err := ReportFromPayload(payload)
	if err != nil {
		t.Fatalf("ReportFromPayload: %v", err)
	}
	if report.RiskScore != 100 {
		t.Fatalf("score must clamp to 100, got %d", report.RiskScore)
	}
	if report.RiskLevel != RiskMedium {
		t.Fatalf("risk level: %s", report.RiskLevel)
	}
	if report.Summary.TotalIssues != 4 || report.Summary.UnfavorableHigh != 1 {
		t.Fatalf("summary: %+v", report.Summary)
	}
	if len(report.Detail.KeyRisks) != 1 || report.Recommendation.SigningAdvice != "negotiate first" {
		t.Fatalf("detail/recommendation: %+v", report)
	}
}

func TestReportFromPayloadRejectsNonObject(t *testing.T) {
	if _, err := ReportFromPayload([]any{}); err == nil {
		t.Fatal("expected error for array payload")
	}
}

func TestParseRiskLevelDefaultsLow(t *testing.T) {
	for _, v := range []string{"", "critical", "???"} {
		if got := ParseRiskLevel(v); got != RiskLow {
			t.Fatalf("ParseRiskLevel(%q) = %s", v, got)
		}
	}
	if got := ParseRiskLevel(" High "); got != RiskHigh {
		t.Fatalf("got %s", got)
	}
}

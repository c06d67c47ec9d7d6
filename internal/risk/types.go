package risk

type PartyPerspective string

const (
	PartyA PartyPerspective = "party_a"
	PartyB PartyPerspective = "party_b"
)

func ValidParty(v PartyPerspective) bool {
	return v == PartyA || v == PartyB
}

type Category string

const (
	CategoryLegal    Category = "LEGAL"
	CategoryBusiness Category = "BUSINESS"
	CategoryFormat   Category = "FORMAT"
	CategoryOther    Category = "OTHER"
)

type RiskLevel string

const (
	RiskHigh   RiskLevel = "HIGH"
	RiskMedium RiskLevel = "MEDIUM"
	RiskLow    RiskLevel = "LOW"
)

// ContractDocument is the ingested contract. Text is normalized once at
// ingestion and never mutated afterwards.
type ContractDocument struct {
	SourcePath       string           `json:"source_path"`
	PartyPerspective PartyPerspective `json:"party_perspective"`
	Text             string           `json:"text"`
}

type Issue struct {
	Category             Category  `json:"category"`
	RiskLevel            RiskLevel `json:"risk_level"`
	ClauseReference      string    `json:"clause_reference,omitempty"`
	Description          string    `json:"description"`
	LegalBasis           string    `json:"legal_basis,omitempty"`
	ImpactAnalysis       string    `json:"impact_analysis,omitempty"`
	BusinessOptimization string    `json:"business_optimization,omitempty"`
	Suggestion           string    `json:"suggestion,omitempty"`
}

// ExpertResponse is either a present issue list or an explicit absence
// marker for a reviewer that failed or returned an unparsable payload.
type ExpertResponse struct {
	Status string  `json:"status"` // "ok" or "absent"
	Issues []Issue `json:"issues,omitempty"`
	Reason string  `json:"reason,omitempty"`
}

const (
	ExpertOK     = "ok"
	ExpertAbsent = "absent"
)

func PresentResponse(issues []Issue) ExpertResponse {
	if issues == nil {
		issues = []Issue{}
	}
	return ExpertResponse{Status: ExpertOK, Issues: issues}
}

func AbsentResponse(reason string) ExpertResponse {
	return ExpertResponse{Status: ExpertAbsent, Reason: reason}
}

type SummaryCounts struct {
	TotalIssues       int `json:"total_issues"`
	UnfavorableHigh   int `json:"unfavorable_high"`
	UnfavorableMedium int `json:"unfavorable_medium"`
	UnfavorableLow    int `json:"unfavorable_low"`
	FavorableClauses  int `json:"favorable_clauses"`
	IllegalClauses    int `json:"illegal_clauses"`
}

type ReportDetail struct {
	KeyRisks                []string `json:"key_risks"`
	FavorablePoints         []string `json:"favorable_points"`
	ImpactAnalysis          string   `json:"impact_analysis"`
	OptimizationSuggestions []string `json:"optimization_suggestions"`
}

type Recommendation struct {
	SigningAdvice     string   `json:"signing_advice"`
	NegotiationPoints []string `json:"negotiation_points"`
	RiskMitigation    []string `json:"risk_mitigation"`
}

// AnalysisReport is the integration capability's merged assessment.
// Every field is defaultable; absent values must render downstream as an
// explicit "not available" marker, never crash.
type AnalysisReport struct {
	RiskScore      int            `json:"risk_score"`
	RiskLevel      RiskLevel      `json:"risk_level"`
	Summary        SummaryCounts  `json:"summary"`
	Detail         ReportDetail   `json:"detail"`
	Recommendation Recommendation `json:"recommendation"`
}

// PipelineResult is the persisted outcome of one review run. Error is
// set only when ingestion or integration fails fatally; reviewer-stage
// failures never set it.
type PipelineResult struct {
	SourcePath       string                    `json:"source_path"`
	PartyPerspective PartyPerspective          `json:"party_perspective"`
	ExpertResponses  map[string]ExpertResponse `json:"expert_responses,omitempty"`
	MergedIssues     []Issue                   `json:"merged_issues,omitempty"`
	Report           *AnalysisReport           `json:"report,omitempty"`
	Error            string                    `json:"error,omitempty"`
}

// Reviewer keys in PipelineResult.ExpertResponses, in merge order.
const (
	ReviewerLegal    = "legal"
	ReviewerBusiness = "business"
	ReviewerFormat   = "format"
)

var ReviewerOrder = []string{ReviewerLegal, ReviewerBusiness, ReviewerFormat}

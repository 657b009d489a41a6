package workflow

import (
	"encoding/json"
	"fmt"
)

// Specification is the structured procurement requirement extracted from a
// free-text request. Immutable once the refine loop accepts it.
type Specification struct {
	ItemCategory         string   `json:"item_category"`
	KeySpecifications    []string `json:"key_specifications"`
	EstimatedBudget      string   `json:"estimated_budget"`
	RequiredDeliveryDate string   `json:"required_delivery_date"`
}

type RankingResult struct {
	TopSupplierID string `json:"top_supplier_id"`
	Reasoning     string `json:"reasoning"`
}

type RiskAssessment struct {
	RiskSummary string `json:"risk_summary"`
	RiskScore   int    `json:"risk_score"`
}

type ComplianceVerdict struct {
	IsCompliant     bool   `json:"is_compliant"`
	RejectionReason string `json:"rejection_reason"`
}

// ComplianceCandidate holds the raw JSON fields of one compliance generation.
// Keeping the fields raw lets the schema reward score wrongly-typed output
// -1.0 instead of failing the decode.
type ComplianceCandidate struct {
	Fields map[string]json.RawMessage
}

// Verdict decodes the candidate into a typed verdict. It fails when the
// generator produced missing or wrongly-typed fields.
func (candidate ComplianceCandidate) Verdict() (ComplianceVerdict, error) {
	rawCompliant, ok := candidate.Fields["is_compliant"]
	if !ok {
		return ComplianceVerdict{}, fmt.Errorf("compliance candidate missing is_compliant")
	}
	rawReason, ok := candidate.Fields["rejection_reason"]
	if !ok {
		return ComplianceVerdict{}, fmt.Errorf("compliance candidate missing rejection_reason")
	}
	var verdict ComplianceVerdict
	if err := json.Unmarshal(rawCompliant, &verdict.IsCompliant); err != nil {
		return ComplianceVerdict{}, fmt.Errorf("decode is_compliant: %w", err)
	}
	if err := json.Unmarshal(rawReason, &verdict.RejectionReason); err != nil {
		return ComplianceVerdict{}, fmt.Errorf("decode rejection_reason: %w", err)
	}
	return verdict, nil
}

type Status string

const (
	StatusApproved       Status = "APPROVED"
	StatusRequiresReview Status = "REQUIRES_REVIEW"
)

// Result is the terminal output of one workflow invocation. Reason is only
// populated for REQUIRES_REVIEW, RiskSummary only for APPROVED.
type Result struct {
	Status        Status        `json:"status"`
	Supplier      string        `json:"supplier"`
	Reason        string        `json:"reason,omitempty"`
	RiskSummary   string        `json:"risk_summary,omitempty"`
	RiskScore     int           `json:"risk_score"`
	Specification Specification `json:"specification"`
}

// ExtractionInputs feed the requirement-extraction stage.
type ExtractionInputs struct {
	RawRequest string
	Feedback   string
}

type RankingInputs struct {
	Specification   Specification
	SupplierContext string
	ContractContext string
}

type RiskInputs struct {
	SupplierID   string
	SupplierInfo string
	AuditContext string
}

type ComplianceInputs struct {
	DraftTerms      string
	ComplianceRules string
}

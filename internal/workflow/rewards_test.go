package workflow_test

import (
	"encoding/json"
	"testing"

	"github.com/temirov/procurement-flow/internal/workflow"
)

func TestBudgetPresent(t *testing.T) {
	cases := []struct {
		budget   string
		expected float64
	}{
		{"50k-100k", 1.0},
		{" $10,000 ", 1.0},
		{"unknown", -1.0},
		{"", -1.0},
		{"   ", -1.0},
		{"tbd", -1.0},
		{"TBD", -1.0},
		{"  Not Provided  ", -1.0},
		{"not specified", -1.0},
		{"n/a", -1.0},
	}
	for _, testCase := range cases {
		candidate := workflow.Specification{EstimatedBudget: testCase.budget}
		score := workflow.BudgetPresent(workflow.ExtractionInputs{}, candidate)
		if score != testCase.expected {
			t.Errorf("budget %q: expected %v, got %v", testCase.budget, testCase.expected, score)
		}
	}
}

func TestBudgetPresent_Pure(t *testing.T) {
	candidate := workflow.Specification{EstimatedBudget: "50k-100k"}
	first := workflow.BudgetPresent(workflow.ExtractionInputs{}, candidate)
	for i := 0; i < 10; i++ {
		if score := workflow.BudgetPresent(workflow.ExtractionInputs{}, candidate); score != first {
			t.Fatalf("re-scoring changed the result: %v then %v", first, score)
		}
	}
}

func complianceCandidateFromJSON(t *testing.T, raw string) workflow.ComplianceCandidate {
	t.Helper()
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		t.Fatalf("unmarshal candidate: %v", err)
	}
	return workflow.ComplianceCandidate{Fields: fields}
}

func TestComplianceSchemaValid(t *testing.T) {
	cases := []struct {
		name     string
		raw      string
		expected float64
	}{
		{"compliant with reason", `{"is_compliant": true, "rejection_reason": "ok"}`, 1.0},
		{"non-compliant with reason", `{"is_compliant": false, "rejection_reason": "missing clause"}`, 1.0},
		{"string instead of bool", `{"is_compliant": "yes", "rejection_reason": "string instead of bool"}`, -1.0},
		{"null reason", `{"is_compliant": true, "rejection_reason": null}`, -1.0},
		{"numeric reason", `{"is_compliant": true, "rejection_reason": 7}`, -1.0},
		{"missing fields", `{}`, -1.0},
	}
	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			candidate := complianceCandidateFromJSON(t, testCase.raw)
			score := workflow.ComplianceSchemaValid(workflow.ComplianceInputs{}, candidate)
			if score != testCase.expected {
				t.Fatalf("expected %v, got %v", testCase.expected, score)
			}
		})
	}
}

func TestComplianceCandidate_Verdict(t *testing.T) {
	candidate := complianceCandidateFromJSON(t, `{"is_compliant": false, "rejection_reason": "rule 2 violated"}`)
	verdict, err := candidate.Verdict()
	if err != nil {
		t.Fatalf("Verdict: %v", err)
	}
	if verdict.IsCompliant {
		t.Fatalf("expected non-compliant verdict")
	}
	if verdict.RejectionReason != "rule 2 violated" {
		t.Fatalf("unexpected reason %q", verdict.RejectionReason)
	}

	malformed := complianceCandidateFromJSON(t, `{"is_compliant": "yes", "rejection_reason": "bad type"}`)
	if _, err := malformed.Verdict(); err == nil {
		t.Fatalf("expected decode error for wrongly-typed is_compliant")
	}
}

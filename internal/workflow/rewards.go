package workflow

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Sentinel budget values the extraction reward treats as missing.
var budgetSentinels = map[string]struct{}{
	"n/a":           {},
	"unknown":       {},
	"tbd":           {},
	"not provided":  {},
	"not specified": {},
}

// BudgetPresent prefers specifications that surface a usable budget rather
// than a vague placeholder. Pure: no I/O, no state.
func BudgetPresent(_ ExtractionInputs, candidate Specification) float64 {
	budget := strings.ToLower(strings.TrimSpace(candidate.EstimatedBudget))
	if budget == "" {
		return -1.0
	}
	if _, sentinel := budgetSentinels[budget]; sentinel {
		return -1.0
	}
	return 1.0
}

// ComplianceSchemaValid scores 1.0 when is_compliant is strictly a JSON
// boolean and rejection_reason strictly a JSON string. This checks shape,
// not semantic correctness.
func ComplianceSchemaValid(_ ComplianceInputs, candidate ComplianceCandidate) float64 {
	if !rawIsBool(candidate.Fields["is_compliant"]) {
		return -1.0
	}
	if !rawIsString(candidate.Fields["rejection_reason"]) {
		return -1.0
	}
	return 1.0
}

func rawIsBool(raw json.RawMessage) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "true", "false":
		return true
	}
	return false
}

func rawIsString(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '"' {
		return false
	}
	var decoded string
	return json.Unmarshal(trimmed, &decoded) == nil
}

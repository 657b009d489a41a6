package workflow

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Canonical schema names for the four generation stages.
const (
	SpecificationSchemaName = "requirement_specification"
	RankingSchemaName       = "supplier_ranking"
	RiskSchemaName          = "risk_assessment"
	ComplianceSchemaName    = "compliance_verdict"
)

const extractionSystemPrompt = "You convert unstructured procurement requests into structured requirement specifications. " +
	"Respond with a single JSON object matching the requested schema. " +
	"Express the estimated budget as a value or range (e.g., '10k-20k USD'); never invent a budget that is not in the request."

const rankingSystemPrompt = "You rank candidate suppliers against a structured procurement specification. " +
	"Return EXACTLY ONE supplier_id string. The value MUST be one that appears in the supplier context in the form 'supplier_id: XXX'. " +
	"NEVER answer 'N/A', 'unknown', or make up an ID. Explain your reasoning based on the supplier and contract context."

const riskSystemPrompt = "You mine risk signals for a single supplier from its profile and audit history. " +
	"Summarize the risk factors briefly and assign an integer risk score from 0 to 100, where 0 is no risk."

const complianceSystemPrompt = "You examine draft contract terms against procurement and legal compliance rules. " +
	"Set is_compliant to a JSON boolean. If not compliant, explain in rejection_reason which rule(s) were violated; " +
	"otherwise set rejection_reason to an empty string."

const specificationSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["item_category", "key_specifications", "estimated_budget", "required_delivery_date"],
  "properties": {
    "item_category": {"type": "string", "description": "High-level category of the requested item (e.g., IT hardware, chemicals)."},
    "key_specifications": {"type": "array", "items": {"type": "string"}, "description": "Essential specifications extracted from the raw request."},
    "estimated_budget": {"type": "string", "description": "Budget expressed as a value or range (e.g., '10k-20k USD')."},
    "required_delivery_date": {"type": "string", "description": "Deadline or delivery expectation extracted from the request."}
  }
}`

const rankingSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["top_supplier_id", "reasoning"],
  "properties": {
    "top_supplier_id": {"type": "string", "description": "The most suitable supplier ID; must appear in the supplier context."},
    "reasoning": {"type": "string", "description": "Why this supplier was selected."}
  }
}`

const riskSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["risk_summary", "risk_score"],
  "properties": {
    "risk_summary": {"type": "string", "description": "Short description of risk factors related to this supplier."},
    "risk_score": {"type": "integer", "minimum": 0, "maximum": 100, "description": "Supplier risk level from 0 to 100."}
  }
}`

const complianceSchema = `{
  "type": "object",
  "additionalProperties": false,
  "required": ["is_compliant", "rejection_reason"],
  "properties": {
    "is_compliant": {"type": "boolean", "description": "Whether the contract terms pass all compliance checks."},
    "rejection_reason": {"type": "string", "description": "If not compliant, which rule(s) were violated; empty otherwise."}
  }
}`

func extractionRequest(inputs ExtractionInputs) LLMRequest {
	var prompt strings.Builder
	prompt.WriteString("Procurement request:\n")
	prompt.WriteString(strings.TrimSpace(inputs.RawRequest))
	prompt.WriteString("\n\nRefinement feedback: ")
	prompt.WriteString(inputs.Feedback)
	return LLMRequest{
		SystemPrompt: extractionSystemPrompt,
		UserPrompt:   prompt.String(),
		SchemaName:   SpecificationSchemaName,
		JSONSchema:   []byte(specificationSchema),
	}
}

func rankingRequest(inputs RankingInputs) (LLMRequest, error) {
	specJSON, marshalErr := json.Marshal(inputs.Specification)
	if marshalErr != nil {
		return LLMRequest{}, fmt.Errorf("marshal specification: %w", marshalErr)
	}
	var prompt strings.Builder
	prompt.WriteString("Specification:\n")
	prompt.Write(specJSON)
	prompt.WriteString("\n\nSupplier context:\n")
	prompt.WriteString(inputs.SupplierContext)
	prompt.WriteString("\n\nContract context:\n")
	prompt.WriteString(inputs.ContractContext)
	return LLMRequest{
		SystemPrompt: rankingSystemPrompt,
		UserPrompt:   prompt.String(),
		SchemaName:   RankingSchemaName,
		JSONSchema:   []byte(rankingSchema),
	}, nil
}

func riskRequest(inputs RiskInputs) LLMRequest {
	var prompt strings.Builder
	prompt.WriteString("Supplier ID: ")
	prompt.WriteString(inputs.SupplierID)
	prompt.WriteString("\n\nSupplier profile:\n")
	prompt.WriteString(inputs.SupplierInfo)
	prompt.WriteString("\n\nAudit context:\n")
	prompt.WriteString(inputs.AuditContext)
	return LLMRequest{
		SystemPrompt: riskSystemPrompt,
		UserPrompt:   prompt.String(),
		SchemaName:   RiskSchemaName,
		JSONSchema:   []byte(riskSchema),
	}
}

func complianceRequest(inputs ComplianceInputs) LLMRequest {
	var prompt strings.Builder
	prompt.WriteString("Draft contract terms:\n")
	prompt.WriteString(inputs.DraftTerms)
	prompt.WriteString("\n\nCompliance rules:\n")
	prompt.WriteString(inputs.ComplianceRules)
	return LLMRequest{
		SystemPrompt: complianceSystemPrompt,
		UserPrompt:   prompt.String(),
		SchemaName:   ComplianceSchemaName,
		JSONSchema:   []byte(complianceSchema),
	}
}

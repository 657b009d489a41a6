// Package mockdata generates a deterministic demo corpus of suppliers,
// contracts, and audit reports for seeding the vector store.
package mockdata

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

var (
	categories = []string{"Palm Oil", "Fragrance", "rPET Packaging", "Industrial Chemicals", "IT Hardware"}
	regions    = []string{"Indonesia", "Malaysia", "Vietnam", "Brazil", "Netherlands"}

	companyPrefixes = []string{"Nusantara", "Meridian", "Atlas", "Borneo", "Delta", "Pacifica", "Vertex", "Harmoni", "Solaris", "Andes"}
	companySuffixes = []string{"Trading", "Industries", "Group", "Resources", "Holdings", "Partners"}

	paymentTermChoices = []string{"Net 30", "Net 60", "Net 90"}

	// A small fixed set of audit findings keeps the retrieval patterns
	// predictable for the risk-mining stage.
	auditFindings = []string{
		"**CRITICAL:** Evidence of excessive overtime working hours (80+ hours/week) was found in the packaging unit.",
		"**MAJOR:** Waste water treatment plant was bypassed during heavy rains, leading to direct discharge into local river.",
		"**CRITICAL:** Several workers were unable to access their passports, which were held by management (Indicator of Forced Labor).",
		"**MAJOR:** The fire suppression system in the warehouse is non-functional and certification has expired.",
	}
)

const noIssueFinding = "No critical non-compliances were observed during the site visit."

// auditAnchorDate keeps generated dates stable across runs with the same seed.
var auditAnchorDate = time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)

type Supplier struct {
	SupplierID          string
	Name                string
	Category            string
	Region              string
	ContactEmail        string
	SustainabilityScore int
	ContractActive      bool
	LastAuditDate       time.Time
}

// Corpus holds one generated demo dataset. Contracts and Audits are keyed by
// supplier id.
type Corpus struct {
	Suppliers []Supplier
	Contracts map[string]string
	Audits    map[string]string
}

// Generate produces count suppliers with contract and audit documents.
// Identical (count, seed) pairs always yield an identical corpus.
func Generate(count int, seed int64) Corpus {
	rng := rand.New(rand.NewSource(seed))
	corpus := Corpus{
		Suppliers: make([]Supplier, 0, count),
		Contracts: make(map[string]string, count),
		Audits:    make(map[string]string, count),
	}
	for i := 0; i < count; i++ {
		supplier := generateSupplier(rng, i)
		corpus.Suppliers = append(corpus.Suppliers, supplier)
		corpus.Contracts[supplier.SupplierID] = renderContract(rng, supplier)
		corpus.Audits[supplier.SupplierID] = renderAudit(rng, supplier)
	}
	return corpus
}

func generateSupplier(rng *rand.Rand, index int) Supplier {
	category := categories[rng.Intn(len(categories))]
	region := regions[rng.Intn(len(regions))]

	baseScore := 60 + rng.Intn(36)
	if (region == "Indonesia" || region == "Vietnam") && category == "Palm Oil" {
		baseScore -= rng.Intn(16)
	}

	name := fmt.Sprintf("%s %s %s Ltd",
		companyPrefixes[rng.Intn(len(companyPrefixes))],
		companySuffixes[rng.Intn(len(companySuffixes))],
		category)

	return Supplier{
		SupplierID:          fmt.Sprintf("SUP-%d", 1000+index),
		Name:                name,
		Category:            category,
		Region:              region,
		ContactEmail:        fmt.Sprintf("procurement@%s.example.com", slug(name)),
		SustainabilityScore: clampScore(baseScore),
		ContractActive:      rng.Intn(3) != 2,
		LastAuditDate:       auditAnchorDate.AddDate(0, 0, -rng.Intn(730)),
	}
}

// Description renders the structured supplier text that gets embedded and
// retrieved. The supplier_id field format matters: the ranking prompt
// instructs the model to choose an id that appears as 'supplier_id: XXX'.
func (s Supplier) Description() string {
	return fmt.Sprintf(
		"supplier_id: %s. Name: %s. Category: %s. Region: %s. Contact: %s. Sustainability score: %d/100. Contract active: %t. Last audit: %s.",
		s.SupplierID, s.Name, s.Category, s.Region, s.ContactEmail,
		s.SustainabilityScore, s.ContractActive, s.LastAuditDate.Format(time.DateOnly))
}

func renderContract(rng *rand.Rand, supplier Supplier) string {
	paymentTerms := paymentTermChoices[rng.Intn(len(paymentTermChoices))]
	penalty := 5 + rng.Intn(16)
	contractDate := supplier.LastAuditDate.AddDate(-1, 0, 0)

	return fmt.Sprintf(`# Master Services Agreement (MSA)
**Supplier:** %s (%s)
**Date:** %s
**Category:** %s

## 1. Scope of Supply
The Supplier agrees to provide %s in accordance with the buyer's quality standards (STD-2024).

## 2. Pricing and Payment Terms
* **Base Currency:** USD
* **Payment Terms:** %s days from receipt of valid invoice.
* **Price Adjustments:** Prices are fixed for 12 months. Any increase requires 60 days' notice.

## 3. Compliance & Sustainability
The Supplier warrants compliance with the Responsible Sourcing Policy (RSP).
* **Carbon Footprint:** Must report Scope 1 & 2 emissions quarterly.
* **Penalty:** Failure to meet delivery schedules will incur a penalty of %d%% of the shipment value.

## 4. Termination
This agreement may be terminated by either party with 90 days written notice.
`, supplier.Name, supplier.SupplierID, contractDate.Format(time.DateOnly), supplier.Category,
		supplier.Category, paymentTerms, penalty)
}

func renderAudit(rng *rand.Rand, supplier Supplier) string {
	hasIssue := supplier.SustainabilityScore < 70
	finding := noIssueFinding
	if hasIssue {
		finding = auditFindings[rng.Intn(len(auditFindings))]
	}

	laborLine := "Compliant with local laws."
	environmentLine := "Waste management logs are up to date."
	if strings.Contains(finding, "overtime") || strings.Contains(finding, "passports") {
		laborLine = finding
	} else if hasIssue {
		environmentLine = finding
	}

	grade := "Satisfactory"
	if hasIssue {
		grade = "**At Risk**"
	}

	return fmt.Sprintf(`# Supplier Social & Environmental Audit Report
**Target Entity:** %s
**Location:** %s
**Audit Date:** %s
**Auditor:** Intertek / SGS (Simulated)

## Executive Summary
This audit was conducted against the responsible sourcing standards.

## Section A: Labor Standards
* Child Labor: None observed.
* Wages: Minimum wage standards met.
* **Working Hours & Conditions:** %s

## Section B: Health, Safety & Environment (HSE)
* PPE Usage: 95%% compliance.
* **Environmental Impact:** %s

## Conclusion
The supplier is graded as: %s.
`, supplier.Name, supplier.Region, supplier.LastAuditDate.Format(time.DateOnly), laborLine, environmentLine, grade)
}

func slug(name string) string {
	lowered := strings.ToLower(name)
	lowered = strings.ReplaceAll(lowered, " ", "-")
	return strings.Trim(lowered, "-")
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

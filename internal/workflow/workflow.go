// Package workflow orchestrates the procurement decision pipeline: extract a
// structured specification from a raw request, retrieve supplier and contract
// context, rank suppliers, mine risk from audit history, and check draft
// terms against compliance rules.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/procurement-flow/internal/refine"
	"github.com/temirov/procurement-flow/internal/retrieval"
)

const initialFeedback = "none"

// malformedVerdictReason substitutes for a compliance winner whose fields
// could not be decoded; the pipeline still needs a verdict to branch on.
const malformedVerdictReason = "compliance check returned a malformed verdict"

// Config carries the orchestrator's tunables. Samples and Threshold feed the
// two refine loops; TopK bounds every retrieval; Rules is the fixed
// compliance-rules text supplied by the caller.
type Config struct {
	Samples   int
	Threshold float64
	TopK      int
	Policy    refine.Policy
	Rules     string
}

// Workflow runs the seven-stage pipeline. It owns every intermediate value
// for exactly one invocation and keeps no cross-invocation state.
type Workflow struct {
	client    Client
	suppliers retrieval.Retriever
	contracts retrieval.Retriever
	audits    retrieval.Retriever
	cfg       Config
	logger    *zap.Logger
}

// New validates the collaborators and returns a ready workflow.
func New(client Client, suppliers, contracts, audits retrieval.Retriever, cfg Config, logger *zap.Logger) (*Workflow, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: language-model client is required", ErrInvalidConfiguration)
	}
	if suppliers == nil || contracts == nil || audits == nil {
		return nil, fmt.Errorf("%w: supplier, contract, and audit retrievers are required", ErrInvalidConfiguration)
	}
	if cfg.Samples <= 0 {
		return nil, fmt.Errorf("%w: samples must be positive, got %d", ErrInvalidConfiguration, cfg.Samples)
	}
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidConfiguration, cfg.TopK)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		client:    client,
		suppliers: suppliers,
		contracts: contracts,
		audits:    audits,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Run executes the pipeline for one raw request. Stages run strictly in
// order; any irrecoverable stage failure aborts the run, nothing is
// partially completed.
func (w *Workflow) Run(ctx context.Context, rawRequest string) (Result, error) {
	logger := w.logger.With(zap.String("run_id", uuid.NewString()))

	spec, extractErr := w.extractSpecification(ctx, logger, rawRequest)
	if extractErr != nil {
		return Result{}, fmt.Errorf("extract specification: %w", extractErr)
	}

	query := ragQuery(spec)
	logger.Info("retrieval query built", zap.String("query", query))

	supplierSnippets, supplierErr := w.suppliers.Retrieve(ctx, query, w.cfg.TopK)
	if supplierErr != nil {
		return Result{}, fmt.Errorf("retrieve suppliers: %w", supplierErr)
	}
	if len(supplierSnippets) == 0 {
		return Result{}, ErrNoSuppliers
	}

	contractSnippets, contractErr := w.contracts.Retrieve(ctx, query, w.cfg.TopK)
	if contractErr != nil {
		return Result{}, fmt.Errorf("retrieve contracts: %w", contractErr)
	}
	if len(contractSnippets) == 0 {
		// Empty contract context degrades answer quality but is not fatal.
		logger.Warn("contract retrieval returned no results")
	}

	supplierContext := joinSnippets(supplierSnippets)
	contractContext := joinSnippets(contractSnippets)

	ranking, rankErr := w.rankSuppliers(ctx, logger, RankingInputs{
		Specification:   spec,
		SupplierContext: supplierContext,
		ContractContext: contractContext,
	}, supplierSnippets)
	if rankErr != nil {
		return Result{}, fmt.Errorf("rank suppliers: %w", rankErr)
	}
	logger.Info("supplier ranked", zap.String("supplier_id", ranking.TopSupplierID))

	supplierInfo, detailErr := w.firstHit(ctx, logger, w.suppliers, ranking.TopSupplierID, "supplier detail")
	if detailErr != nil {
		return Result{}, fmt.Errorf("retrieve supplier detail: %w", detailErr)
	}
	auditInfo, auditErr := w.firstHit(ctx, logger, w.audits, ranking.TopSupplierID, "audit report")
	if auditErr != nil {
		return Result{}, fmt.Errorf("retrieve audit report: %w", auditErr)
	}

	risk, riskErr := w.mineRisk(ctx, logger, RiskInputs{
		SupplierID:   ranking.TopSupplierID,
		SupplierInfo: supplierInfo,
		AuditContext: auditInfo,
	})
	if riskErr != nil {
		return Result{}, fmt.Errorf("mine risk: %w", riskErr)
	}

	verdict, complianceErr := w.checkCompliance(ctx, logger, ComplianceInputs{
		DraftTerms:      contractContext,
		ComplianceRules: w.cfg.Rules,
	})
	if complianceErr != nil {
		return Result{}, fmt.Errorf("check compliance: %w", complianceErr)
	}

	if !verdict.IsCompliant {
		return Result{
			Status:        StatusRequiresReview,
			Supplier:      ranking.TopSupplierID,
			Reason:        verdict.RejectionReason,
			RiskScore:     risk.RiskScore,
			Specification: spec,
		}, nil
	}
	return Result{
		Status:        StatusApproved,
		Supplier:      ranking.TopSupplierID,
		RiskSummary:   risk.RiskSummary,
		RiskScore:     risk.RiskScore,
		Specification: spec,
	}, nil
}

func (w *Workflow) extractSpecification(ctx context.Context, logger *zap.Logger, rawRequest string) (Specification, error) {
	generate := func(ctx context.Context, inputs ExtractionInputs) (Specification, error) {
		return generateTyped[Specification](ctx, w.client, extractionRequest(inputs))
	}
	selection, err := refine.Run(ctx, w.refineConfig(), generate, BudgetPresent, ExtractionInputs{
		RawRequest: rawRequest,
		Feedback:   initialFeedback,
	})
	if err != nil {
		return Specification{}, err
	}
	logSelection(logger, "specification extracted", selection.Score, selection.Attempt, selection.Failures, selection.Degraded)
	return selection.Candidate, nil
}

// rankSuppliers issues a single generation, verifies the chosen identifier
// actually occurs in the supplied context, and re-samples once on a mismatch.
func (w *Workflow) rankSuppliers(ctx context.Context, logger *zap.Logger, inputs RankingInputs, snippets []retrieval.Snippet) (RankingResult, error) {
	request, requestErr := rankingRequest(inputs)
	if requestErr != nil {
		return RankingResult{}, requestErr
	}
	for attempt := 1; attempt <= 2; attempt++ {
		ranking, generateErr := generateTyped[RankingResult](ctx, w.client, request)
		if generateErr != nil {
			return RankingResult{}, generateErr
		}
		if supplierKnown(ranking.TopSupplierID, snippets, inputs.SupplierContext) {
			return ranking, nil
		}
		logger.Warn("ranking chose a supplier outside the retrieved context",
			zap.String("supplier_id", ranking.TopSupplierID),
			zap.Int("attempt", attempt))
	}
	return RankingResult{}, ErrUnknownSupplier
}

func (w *Workflow) mineRisk(ctx context.Context, logger *zap.Logger, inputs RiskInputs) (RiskAssessment, error) {
	risk, generateErr := generateTyped[RiskAssessment](ctx, w.client, riskRequest(inputs))
	if generateErr != nil {
		return RiskAssessment{}, generateErr
	}
	if risk.RiskScore < 0 || risk.RiskScore > 100 {
		logger.Warn("risk score outside [0,100], clamping", zap.Int("risk_score", risk.RiskScore))
		risk.RiskScore = min(100, max(0, risk.RiskScore))
	}
	return risk, nil
}

func (w *Workflow) checkCompliance(ctx context.Context, logger *zap.Logger, inputs ComplianceInputs) (ComplianceVerdict, error) {
	generate := func(ctx context.Context, inputs ComplianceInputs) (ComplianceCandidate, error) {
		response, chatErr := w.client.Chat(ctx, complianceRequest(inputs))
		if chatErr != nil {
			return ComplianceCandidate{}, chatErr
		}
		fields := map[string]json.RawMessage{}
		if err := json.Unmarshal([]byte(response.RawText), &fields); err != nil {
			return ComplianceCandidate{}, fmt.Errorf("decode compliance candidate: %w", err)
		}
		return ComplianceCandidate{Fields: fields}, nil
	}
	selection, err := refine.Run(ctx, w.refineConfig(), generate, ComplianceSchemaValid, inputs)
	if err != nil {
		return ComplianceVerdict{}, err
	}
	logSelection(logger, "compliance checked", selection.Score, selection.Attempt, selection.Failures, selection.Degraded)

	verdict, verdictErr := selection.Candidate.Verdict()
	if verdictErr != nil {
		logger.Warn("degraded compliance winner could not be decoded", zap.Error(verdictErr))
		return ComplianceVerdict{IsCompliant: false, RejectionReason: malformedVerdictReason}, nil
	}
	return verdict, nil
}

// firstHit returns the text of the first snippet matching the query, or an
// empty string when the collection has nothing for it.
func (w *Workflow) firstHit(ctx context.Context, logger *zap.Logger, retriever retrieval.Retriever, query, label string) (string, error) {
	snippets, err := retriever.Retrieve(ctx, query, 1)
	if err != nil {
		return "", err
	}
	if len(snippets) == 0 {
		logger.Warn("retrieval returned no results", zap.String("stage", label), zap.String("query", query))
		return "", nil
	}
	return snippets[0].Text, nil
}

func (w *Workflow) refineConfig() refine.Config {
	return refine.Config{
		Samples:   w.cfg.Samples,
		Threshold: w.cfg.Threshold,
		Policy:    w.cfg.Policy,
	}
}

// ragQuery builds the retrieval query from the specification's category,
// key specifications, and budget.
func ragQuery(spec Specification) string {
	parts := []string{strings.TrimSpace(spec.ItemCategory)}
	parts = append(parts, spec.KeySpecifications...)
	parts = append(parts, strings.TrimSpace(spec.EstimatedBudget))
	fields := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			fields = append(fields, strings.TrimSpace(part))
		}
	}
	return strings.Join(fields, " ")
}

func joinSnippets(snippets []retrieval.Snippet) string {
	texts := make([]string, 0, len(snippets))
	for _, snippet := range snippets {
		texts = append(texts, snippet.Text)
	}
	return strings.Join(texts, "\n")
}

func supplierKnown(supplierID string, snippets []retrieval.Snippet, joinedContext string) bool {
	if strings.TrimSpace(supplierID) == "" {
		return false
	}
	for _, snippet := range snippets {
		if snippet.SupplierID == supplierID {
			return true
		}
	}
	return strings.Contains(joinedContext, supplierID)
}

func logSelection(logger *zap.Logger, message string, score float64, attempt, failures int, degraded bool) {
	fields := []zap.Field{
		zap.Float64("score", score),
		zap.Int("attempt", attempt),
	}
	if failures > 0 {
		fields = append(fields, zap.Int("failed_attempts", failures))
	}
	if degraded {
		fields = append(fields, zap.Bool("degraded", true))
	}
	logger.Info(message, fields...)
}

package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Harshitk-cp/synapse/internal/domain"
	"go.uber.org/zap"
)

// Flow states. One query moves classifying -> flow -> guardrails -> done,
// with failed reachable from anywhere.
type flowState string

const (
	stateClassifying      flowState = "classifying"
	stateMemoryPrimary    flowState = "memory_primary"
	stateRetrievalPrimary flowState = "retrieval_primary"
	stateHybrid           flowState = "hybrid"
	stateGuardrails       flowState = "guardrails"
	stateDone             flowState = "done"
	stateFailed           flowState = "failed"
)

const (
	// Routing thresholds.
	hybridIntentConfidence = 0.6
	memoryEnrichConfidence = 0.6
	memoryEnrichMinSources = 2
	guardrailLowConfidence = 0.4
	guardrailSpeculative   = 0.6
	guardrailMinMemSources = 2

	// Freshness priors per source: current documents are fresher than
	// graph history by construction.
	freshnessRetrieval = 0.9
	freshnessMemory    = 0.6

	neutralGrounding = 0.5

	healthProbeTTL     = 15 * time.Second
	healthProbeTimeout = 2 * time.Second

	queryCacheMaxSize = 500
)

// Stream event types, emitted in execution order: intent always first,
// complete always last.
type EventType string

const (
	EventIntent    EventType = "intent"
	EventMemory    EventType = "memory"
	EventRetrieval EventType = "retrieval"
	EventMerged    EventType = "merged"
	EventError     EventType = "error"
	EventComplete  EventType = "complete"
)

type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// EventSink receives stream events as the orchestrator produces them.
type EventSink func(Event)

// Options tune routing and resource policy. Zero values fall back to the
// documented defaults.
type Options struct {
	MemoryBlendWeight float64
	BackendTimeout    time.Duration
	RetrievalTopK     int
	QueryCacheTTL     time.Duration
}

func (o Options) withDefaults() Options {
	if o.MemoryBlendWeight <= 0 || o.MemoryBlendWeight >= 1 {
		o.MemoryBlendWeight = DefaultBlendWeight
	}
	if o.BackendTimeout <= 0 {
		o.BackendTimeout = 10 * time.Second
	}
	if o.RetrievalTopK <= 0 {
		o.RetrievalTopK = 5
	}
	return o
}

// Orchestrator routes queries across the memory and retrieval backends,
// grounds entities, scores confidence, applies guardrails and feeds the
// feedback loop. One Orchestrate call owns one query end to end.
type Orchestrator struct {
	intents   *IntentService
	grounding *GroundingService
	feedback  *FeedbackService
	memory    domain.MemoryClient
	retrieval domain.RetrievalClient
	generator domain.GenerativeClient
	logger    *zap.Logger
	opts      Options

	queryCache *ttlCache

	healthMu        sync.Mutex
	healthOK        bool
	healthCheckedAt time.Time
}

func NewOrchestrator(
	intents *IntentService,
	grounding *GroundingService,
	feedback *FeedbackService,
	memoryClient domain.MemoryClient,
	retrievalClient domain.RetrievalClient,
	generator domain.GenerativeClient,
	opts Options,
	logger *zap.Logger,
) *Orchestrator {
	opts = opts.withDefaults()
	o := &Orchestrator{
		intents:   intents,
		grounding: grounding,
		feedback:  feedback,
		memory:    memoryClient,
		retrieval: retrievalClient,
		generator: generator,
		logger:    logger,
		opts:      opts,
	}
	if opts.QueryCacheTTL > 0 {
		o.queryCache = newTTLCache(opts.QueryCacheTTL, queryCacheMaxSize)
	}
	return o
}

// queryRun carries the per-query state: the shared context, the ordered
// reasoning trace and the event sink. Owned by exactly one call.
type queryRun struct {
	query          string
	queryContext   map[string]any
	classification domain.Classification
	shared         *domain.SharedContext
	trace          []domain.ReasoningStep
	emit           EventSink
	degraded       bool
	fallbackUsed   bool
	findingChunks  []domain.Chunk
}

func (r *queryRun) step(action, details string, confidence float64) {
	r.trace = append(r.trace, domain.ReasoningStep{
		Step:       len(r.trace) + 1,
		Action:     action,
		Details:    details,
		Confidence: confidence,
		Timestamp:  time.Now().UTC(),
	})
}

func (r *queryRun) event(t EventType, payload any) {
	if r.emit != nil {
		r.emit(Event{Type: t, Payload: payload})
	}
}

// flowResult is the outcome of one routing flow, before guardrails.
type flowResult struct {
	answer     string
	sources    []domain.Source
	sourceType domain.SourceType
	breakdown  domain.ConfidenceBreakdown
	answerType domain.AnswerType
}

// Orchestrate answers one query. It never returns an error and never
// panics through to the caller: every failure mode collapses into the
// standardized error response.
func (o *Orchestrator) Orchestrate(ctx context.Context, query string, queryContext map[string]any) *domain.UnifiedResponse {
	return o.OrchestrateStream(ctx, query, queryContext, nil)
}

// OrchestrateStream is Orchestrate with a live event sink. Events arrive
// in execution order; intent is always first and complete always last.
func (o *Orchestrator) OrchestrateStream(ctx context.Context, query string, queryContext map[string]any, emit EventSink) (resp *domain.UnifiedResponse) {
	run := &queryRun{
		query:        query,
		queryContext: queryContext,
		shared:       &domain.SharedContext{},
		emit:         emit,
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("orchestration panic", zap.Any("panic", r), zap.String("query", query))
			resp = ErrorResponse(query, fmt.Sprintf("internal fault: %v", r), run.trace)
			run.event(EventError, resp.Error)
			run.event(EventComplete, nil)
		}
	}()

	if strings.TrimSpace(query) == "" {
		resp = ErrorResponse(query, "query must not be empty", nil)
		run.event(EventError, resp.Error)
		run.event(EventComplete, nil)
		return resp
	}

	if emit == nil && o.queryCache != nil {
		if cached, ok := o.queryCache.Get(cacheKey(query)); ok {
			return cached.(*domain.UnifiedResponse)
		}
	}

	resp = o.run(ctx, run)

	if resp.Success && emit == nil && o.queryCache != nil {
		o.queryCache.Set(cacheKey(query), resp)
	}
	return resp
}

func (o *Orchestrator) run(ctx context.Context, run *queryRun) *domain.UnifiedResponse {
	// CLASSIFYING
	cctx, cancel := context.WithTimeout(ctx, o.opts.BackendTimeout)
	run.classification = o.intents.Classify(cctx, run.query)
	cancel()

	cls := run.classification
	run.step("classify_intent", fmt.Sprintf("intent=%s reasoning: %s", cls.Intent, cls.Reasoning), cls.Confidence)
	run.event(EventIntent, cls)

	memoryUp := o.memoryReachable(ctx)
	route := chooseRoute(cls.Intent, cls.Confidence, memoryUp)
	if !memoryUp && (cls.Intent == domain.IntentHistorical || cls.Intent == domain.IntentCausal) {
		run.degraded = true
	}
	run.step("select_route", fmt.Sprintf("route=%s memory_reachable=%v", route, memoryUp), cls.Confidence)

	result := o.execute(ctx, run, route, memoryUp)
	if result == nil {
		resp := ErrorResponse(run.query, "all backends failed to produce an answer", run.trace)
		run.event(EventError, resp.Error)
		run.event(EventComplete, nil)
		return resp
	}

	if run.degraded {
		result.answer = "Note: the knowledge memory is currently unreachable; this answer is based on current documents only.\n\n" + result.answer
	}

	// GUARDRAILS
	guardrails := o.applyGuardrails(run, result)

	// Feedback loop: queue high-confidence retrieval content for
	// corroboration before the response is assembled.
	o.recordFindings(ctx, run)

	resp := &domain.UnifiedResponse{
		Success:            true,
		Query:              run.query,
		Answer:             result.answer,
		SourceType:         result.sourceType,
		Confidence:         result.breakdown,
		Sources:            result.sources,
		ReasoningTrace:     run.trace,
		Guardrails:         guardrails,
		RecommendedActions: recommendActions(guardrails),
		SharedContext:      run.shared.Projection(),
	}
	run.event(EventComplete, map[string]any{
		"source_type": resp.SourceType,
		"confidence":  resp.Confidence.Overall,
	})
	return resp
}

// chooseRoute is the deterministic routing table over intent and backend
// availability.
func chooseRoute(intent domain.Intent, confidence float64, memoryUp bool) flowState {
	switch intent {
	case domain.IntentFactual:
		return stateRetrievalPrimary
	case domain.IntentHistorical, domain.IntentCausal:
		if memoryUp {
			return stateMemoryPrimary
		}
		return stateRetrievalPrimary
	default: // mixed, unknown
		if memoryUp && confidence >= hybridIntentConfidence {
			return stateHybrid
		}
		return stateRetrievalPrimary
	}
}

// execute runs the chosen flow with its documented fallback. A nil result
// means total failure.
func (o *Orchestrator) execute(ctx context.Context, run *queryRun, route flowState, memoryUp bool) *flowResult {
	switch route {
	case stateMemoryPrimary:
		result, err := o.memoryPrimary(ctx, run)
		if err == nil {
			return result
		}
		run.step("fallback_to_retrieval", "memory backend failed, falling back to document retrieval", 0.3)
		run.fallbackUsed = true
		result, err = o.retrievalPrimary(ctx, run, false)
		if err != nil {
			run.step("retrieval_failed", "retrieval backend also failed", 0)
			return nil
		}
		return result

	case stateHybrid:
		result, err := o.hybrid(ctx, run)
		if err != nil {
			run.step("hybrid_failed", "both backends failed", 0)
			return nil
		}
		return result

	default: // retrieval primary
		result, err := o.retrievalPrimary(ctx, run, memoryUp)
		if err == nil {
			return result
		}
		if !memoryUp {
			run.step("retrieval_failed", "retrieval backend failed and memory is unreachable", 0)
			return nil
		}
		run.step("fallback_to_memory", "retrieval backend failed, falling back to knowledge memory", 0.3)
		run.fallbackUsed = true
		result, err = o.memoryPrimary(ctx, run)
		if err != nil {
			run.step("memory_failed", "memory backend also failed", 0)
			return nil
		}
		return result
	}
}

// memoryPrimary answers from the knowledge memory, enriching with
// retrieval when memory looks thin.
func (o *Orchestrator) memoryPrimary(ctx context.Context, run *queryRun) (*flowResult, error) {
	mctx, cancel := context.WithTimeout(ctx, o.opts.BackendTimeout)
	answer, err := o.memory.Query(mctx, run.query, run.queryContext)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("memory query: %w", err)
	}

	run.step("memory_query", fmt.Sprintf("%d sources returned", len(answer.Sources)), answer.Confidence)
	run.event(EventMemory, map[string]any{"sources": len(answer.Sources), "confidence": answer.Confidence})

	groundingScore := o.groundFromAnswer(ctx, run, answer)

	result := &flowResult{
		answer:     answer.Answer,
		sources:    answer.Sources,
		sourceType: domain.SourceTypeMemory,
		answerType: domain.AnswerTypeGrounded,
	}

	confidence := answer.Confidence
	freshness := freshnessMemory

	if answer.Confidence < memoryEnrichConfidence || len(answer.Sources) < memoryEnrichMinSources {
		run.step("enrich_decision",
			fmt.Sprintf("memory confidence %.2f with %d sources, enriching with retrieval", answer.Confidence, len(answer.Sources)),
			answer.Confidence)

		chunks, retErr := o.retrieve(ctx, run)
		if retErr != nil {
			run.step("enrich_skipped", "retrieval unavailable, keeping memory-only answer", answer.Confidence)
		} else if len(chunks) > 0 {
			retrievalConf := meanChunkScore(chunks)
			confidence = CombineConfidence(answer.Confidence, retrievalConf, o.opts.MemoryBlendWeight)
			freshness = (freshnessMemory + freshnessRetrieval) / 2
			result.sourceType = domain.SourceTypeHybrid
			result.answer = fmt.Sprintf("%s\n\n(%d current documents corroborate this answer.)", answer.Answer, len(chunks))
			result.sources = append(result.sources, chunkSources(chunks)...)
			run.step("enrich_with_retrieval",
				fmt.Sprintf("merged %d supporting documents", len(chunks)), confidence)
			run.event(EventRetrieval, map[string]any{"chunks": len(chunks)})
		}
	}

	historical := answer.Confidence
	result.breakdown = CalculateConfidence(freshness, confidence, groundingScore, run.classification.Confidence, &historical)
	return result, nil
}

// retrievalPrimary answers from current documents, optionally pulling
// memory context first for entity scoping. Memory failures here are
// tolerated; the flow only fails when retrieval or generation fails.
func (o *Orchestrator) retrievalPrimary(ctx context.Context, run *queryRun, useMemoryContext bool) (*flowResult, error) {
	groundingScore := neutralGrounding
	var historical *float64

	if useMemoryContext {
		mctx, cancel := context.WithTimeout(ctx, o.opts.BackendTimeout)
		answer, err := o.memory.Query(mctx, run.query, run.queryContext)
		cancel()
		if err != nil {
			run.step("memory_context_skipped", "memory context unavailable, continuing without it", 0.5)
		} else {
			groundingScore = o.groundFromAnswer(ctx, run, answer)
			historical = &answer.Confidence
			run.step("memory_context", fmt.Sprintf("historical context loaded, %d entity refs", len(answer.EntityRefs)), answer.Confidence)
			run.event(EventMemory, map[string]any{"sources": len(answer.Sources), "confidence": answer.Confidence})
		}
	}

	chunks, err := o.retrieve(ctx, run)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}
	run.event(EventRetrieval, map[string]any{"chunks": len(chunks)})

	gctx, cancel := context.WithTimeout(ctx, o.opts.BackendTimeout)
	generated, err := o.generator.Generate(gctx, run.query, chunks)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	run.step("generate_answer", fmt.Sprintf("answer generated from %d chunks", len(chunks)), meanChunkScore(chunks))

	answer := generated.Text
	if run.shared.HistoricalContext != "" {
		answer = "Historical context: " + run.shared.HistoricalContext + "\n\n" + answer
	}

	result := &flowResult{
		answer:     answer,
		sources:    generated.Sources,
		sourceType: domain.SourceTypeRetrieval,
		answerType: domain.AnswerTypeGrounded,
	}
	result.breakdown = CalculateConfidence(freshnessRetrieval, meanChunkScore(chunks), groundingScore, run.classification.Confidence, historical)
	return result, nil
}

// branchResult carries one side of the hybrid fan-out join.
type branchResult struct {
	memory    *domain.MemoryAnswer
	retrieval *domain.GeneratedAnswer
	chunks    []domain.Chunk
	err       error
}

// hybrid queries both backends concurrently and merges the perspectives.
// The two calls are independent, so a slow or failed side never blocks
// collection of the other. Each branch converts its own panics into branch
// errors: the outer recover in OrchestrateStream cannot reach a goroutine,
// and a branch fault must degrade the answer, not kill the process.
func (o *Orchestrator) hybrid(ctx context.Context, run *queryRun) (*flowResult, error) {
	memoryCh := make(chan branchResult, 1)
	retrievalCh := make(chan branchResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				memoryCh <- branchResult{err: fmt.Errorf("memory branch fault: %v", r)}
			}
		}()
		mctx, cancel := context.WithTimeout(ctx, o.opts.BackendTimeout)
		defer cancel()
		answer, err := o.memory.Query(mctx, run.query, run.queryContext)
		memoryCh <- branchResult{memory: answer, err: err}
	}()

	go func() {
		defer func() {
			if r := recover(); r != nil {
				retrievalCh <- branchResult{err: fmt.Errorf("retrieval branch fault: %v", r)}
			}
		}()
		chunks, err := o.retrieve(ctx, run)
		if err != nil {
			retrievalCh <- branchResult{err: err}
			return
		}
		gctx, cancel := context.WithTimeout(ctx, o.opts.BackendTimeout)
		defer cancel()
		generated, err := o.generator.Generate(gctx, run.query, chunks)
		retrievalCh <- branchResult{retrieval: generated, chunks: chunks, err: err}
	}()

	memBranch := <-memoryCh
	retBranch := <-retrievalCh

	switch {
	case memBranch.err != nil && retBranch.err != nil:
		return nil, fmt.Errorf("memory: %v; retrieval: %v", memBranch.err, retBranch.err)

	case memBranch.err != nil:
		run.step("hybrid_partial", "memory branch failed, answering from documents only", 0.4)
		run.event(EventRetrieval, map[string]any{"chunks": len(retBranch.chunks)})
		run.fallbackUsed = true
		return &flowResult{
			answer:     retBranch.retrieval.Text,
			sources:    retBranch.retrieval.Sources,
			sourceType: domain.SourceTypeHybrid,
			breakdown:  FallbackBreakdown(),
			answerType: domain.AnswerTypePartial,
		}, nil

	case retBranch.err != nil:
		run.step("hybrid_partial", "retrieval branch failed, answering from memory only", 0.4)
		run.event(EventMemory, map[string]any{"sources": len(memBranch.memory.Sources), "confidence": memBranch.memory.Confidence})
		run.fallbackUsed = true
		o.groundFromAnswer(ctx, run, memBranch.memory)
		return &flowResult{
			answer:     memBranch.memory.Answer,
			sources:    memBranch.memory.Sources,
			sourceType: domain.SourceTypeHybrid,
			breakdown:  FallbackBreakdown(),
			answerType: domain.AnswerTypePartial,
		}, nil
	}

	mem := memBranch.memory
	ret := retBranch.retrieval
	run.event(EventMemory, map[string]any{"sources": len(mem.Sources), "confidence": mem.Confidence})
	run.event(EventRetrieval, map[string]any{"chunks": len(retBranch.chunks)})

	groundingScore := o.groundFromAnswer(ctx, run, mem)
	retrievalConf := meanChunkScore(retBranch.chunks)
	combined := CombineConfidence(mem.Confidence, retrievalConf, o.opts.MemoryBlendWeight)

	run.step("merge_perspectives",
		fmt.Sprintf("blended memory (%.2f) and retrieval (%.2f) with weight %.2f", mem.Confidence, retrievalConf, o.opts.MemoryBlendWeight),
		combined)
	run.event(EventMerged, map[string]any{"confidence": combined})

	answer := fmt.Sprintf("Historical perspective:\n%s\n\nCurrent perspective:\n%s", mem.Answer, ret.Text)
	historical := mem.Confidence

	result := &flowResult{
		answer:     answer,
		sources:    append(append([]domain.Source{}, mem.Sources...), ret.Sources...),
		sourceType: domain.SourceTypeHybrid,
		answerType: domain.AnswerTypeGrounded,
	}
	freshness := (freshnessMemory + freshnessRetrieval) / 2
	result.breakdown = CalculateConfidence(freshness, combined, groundingScore, run.classification.Confidence, &historical)
	return result, nil
}

// retrieve runs one retrieval call, scoped to the first grounded product
// when one is known, and remembers the chunks for the feedback loop.
func (o *Orchestrator) retrieve(ctx context.Context, run *queryRun) ([]domain.Chunk, error) {
	filter := ""
	if product := run.shared.FirstGroundedProduct(); product != nil {
		filter = product.Name
		if filter == "" {
			filter = product.ID
		}
	}

	rctx, cancel := context.WithTimeout(ctx, o.opts.BackendTimeout)
	chunks, err := o.retrieval.Retrieve(rctx, run.query, o.opts.RetrievalTopK, filter)
	cancel()
	if err != nil {
		return nil, err
	}
	run.step("retrieve_documents", fmt.Sprintf("%d chunks, filter=%q", len(chunks), filter), meanChunkScore(chunks))
	run.findingChunks = append(run.findingChunks, chunks...)
	return chunks, nil
}

// groundFromAnswer grounds the entity references a memory answer carries
// and folds the outcome into the shared context. Returns the grounding
// score: the verified fraction, or a neutral prior when the answer
// references no entities.
func (o *Orchestrator) groundFromAnswer(ctx context.Context, run *queryRun, answer *domain.MemoryAnswer) float64 {
	run.shared.HistoricalContext = answer.Historical
	run.shared.PriorDecisions = append(run.shared.PriorDecisions, answer.Decisions...)

	if len(answer.EntityRefs) == 0 {
		return neutralGrounding
	}

	run.shared.EntityRefs = append(run.shared.EntityRefs, answer.EntityRefs...)
	grounded, errs := o.grounding.GroundEntities(ctx, answer.EntityRefs)
	run.shared.GroundedEntities = append(run.shared.GroundedEntities, grounded...)
	run.shared.ValidationErrors = append(run.shared.ValidationErrors, errs...)

	score := float64(len(grounded)) / float64(len(answer.EntityRefs))
	run.step("ground_entities",
		fmt.Sprintf("%d/%d entity references verified", len(grounded), len(answer.EntityRefs)), score)
	return score
}

// applyGuardrails annotates the finalized answer. Always runs before done.
func (o *Orchestrator) applyGuardrails(run *queryRun, result *flowResult) domain.Guardrails {
	g := domain.Guardrails{
		AnswerType:   result.answerType,
		FallbackUsed: run.fallbackUsed,
	}
	if g.AnswerType == "" {
		g.AnswerType = domain.AnswerTypeGrounded
	}

	overall := result.breakdown.Overall
	if overall < guardrailLowConfidence {
		g.LowConfidence = true
		g.Warnings = append(g.Warnings, fmt.Sprintf("overall confidence %.2f is low; verify independently", overall))
	}

	memorySources := 0
	for _, s := range result.sources {
		if s.SourceType == domain.SourceTypeMemory {
			memorySources++
		}
	}
	if memorySources < guardrailMinMemSources {
		g.MemorySparse = true
		g.Limitations = append(g.Limitations, "limited knowledge-memory coverage for this query")
	}

	g.Warnings = append(g.Warnings, run.shared.ValidationErrors...)

	if overall >= guardrailLowConfidence && overall < guardrailSpeculative {
		g.AnswerType = domain.AnswerTypeSpeculative
	}
	if run.degraded {
		g.Limitations = append(g.Limitations, "knowledge memory was unreachable; historical context is missing")
	}

	run.step("guardrails", fmt.Sprintf("answer_type=%s warnings=%d", g.AnswerType, len(g.Warnings)), overall)
	return g
}

// recordFindings queues high-confidence retrieval chunks for the feedback
// loop, tagged with the entities this query grounded.
func (o *Orchestrator) recordFindings(ctx context.Context, run *queryRun) {
	if o.feedback == nil || len(run.findingChunks) == 0 {
		return
	}

	var refs []domain.EntityRef
	for _, g := range run.shared.GroundedEntities {
		refs = append(refs, domain.EntityRef{ID: g.ID, Type: g.Type})
	}

	recorded := 0
	for _, chunk := range run.findingChunks {
		source := chunk.ID
		if doc, ok := chunk.Metadata["document_id"].(string); ok && doc != "" {
			source = doc
		}
		if id, ok := o.feedback.AddFinding(ctx, chunk.Text, source, chunk.Score, run.query, refs); ok {
			recorded++
			run.shared.PendingFindings = append(run.shared.PendingFindings, domain.Finding{ID: id, Content: chunk.Text})
		}
	}
	if recorded > 0 {
		run.step("record_findings", fmt.Sprintf("%d candidate facts queued for corroboration", recorded), 0.8)
	}
}

// memoryReachable probes the memory backend, memoizing the result briefly
// so routing stays deterministic within one query burst.
func (o *Orchestrator) memoryReachable(ctx context.Context) bool {
	o.healthMu.Lock()
	if !o.healthCheckedAt.IsZero() && time.Since(o.healthCheckedAt) < healthProbeTTL {
		ok := o.healthOK
		o.healthMu.Unlock()
		return ok
	}
	o.healthMu.Unlock()

	pctx, cancel := context.WithTimeout(ctx, healthProbeTimeout)
	err := o.memory.Ping(pctx)
	cancel()

	o.healthMu.Lock()
	o.healthOK = err == nil
	o.healthCheckedAt = time.Now()
	o.healthMu.Unlock()
	return err == nil
}

// ClearQueryCache drops all cached responses. For tests and bulk updates.
func (o *Orchestrator) ClearQueryCache() {
	if o.queryCache != nil {
		o.queryCache.Clear()
	}
}

func recommendActions(g domain.Guardrails) []string {
	var actions []string
	if g.LowConfidence {
		actions = append(actions, "corroborate this answer against additional sources before acting on it")
	}
	if g.MemorySparse {
		actions = append(actions, "record the outcome of this query to enrich the knowledge memory")
	}
	if len(g.Warnings) > 0 && !g.LowConfidence {
		actions = append(actions, "review the flagged entity references for typos or renames")
	}
	return actions
}

func meanChunkScore(chunks []domain.Chunk) float64 {
	if len(chunks) == 0 {
		return 0
	}
	var total float64
	for _, c := range chunks {
		total += c.Score
	}
	return clamp01(total / float64(len(chunks)))
}

func chunkSources(chunks []domain.Chunk) []domain.Source {
	sources := make([]domain.Source, 0, len(chunks))
	for _, c := range chunks {
		sources = append(sources, domain.Source{
			SourceID:   c.ID,
			SourceType: domain.SourceTypeRetrieval,
			ChunkID:    c.ID,
			Content:    c.Text,
			Confidence: c.Score,
		})
	}
	return sources
}

func cacheKey(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

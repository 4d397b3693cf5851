// Package analyzer implements the two-phase relevance pipeline: a cheap
// embedding-similarity pre-filter over the open work set, then a
// reasoning-model rerank of the survivors. Either phase can degrade. A
// missing or failing embedding service drops the pipeline to an LLM-only
// path, and a failed reasoning call yields an empty result, but no
// dependency failure ever surfaces as an error from the public entry points.
package analyzer

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/steveyegge/scout/internal/ai"
	"github.com/steveyegge/scout/internal/cache"
	"github.com/steveyegge/scout/internal/embedding"
	"github.com/steveyegge/scout/internal/fingerprint"
	"github.com/steveyegge/scout/internal/similarity"
	"github.com/steveyegge/scout/internal/types"
)

// Mode identifies which pipeline path produced a report
type Mode string

const (
	// ModeTwoPhase means the embedding pre-filter ran and the reranker saw
	// only candidates above the similarity threshold.
	ModeTwoPhase Mode = "two-phase"

	// ModeLLMOnly means every candidate (capped) went straight to the
	// reranker with a placeholder similarity of 1.0.
	ModeLLMOnly Mode = "llm-only"
)

// Report is the typed result of a FindRelatedWork invocation. An empty
// Related slice with Degraded set means a dependency failed; empty with
// Degraded unset means the pipeline ran and genuinely found nothing.
type Report struct {
	Related        []types.RelatedWork
	Mode           Mode
	Degraded       bool
	DegradedReason string
}

// scored pairs a candidate with its pre-filter similarity. Transient;
// exists only within one analysis call.
type scored struct {
	item       *types.WorkItem
	similarity float64
}

// Analyzer orchestrates the relevance pipeline. Dependencies are injected
// at construction; any of them may be nil, in which case the pipeline
// degrades along the fallback chain instead of failing.
type Analyzer struct {
	completions ai.CompletionClient
	embedder    embedding.Client
	store       *cache.Store
	config      Config
}

// New creates an analyzer. completions, embedder, and store may each be nil:
// a nil embedder forces the LLM-only path, a nil store disables caching, and
// a nil completions client makes every invocation return an empty degraded
// result.
func New(cfg Config, completions ai.CompletionClient, embedder embedding.Client, store *cache.Store) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{
		completions: completions,
		embedder:    embedder,
		store:       store,
		config:      cfg,
	}, nil
}

// FindRelatedWork finds open work items the new session duplicates, is
// blocked by, or should collaborate with.
//
// The returned error is non-nil only when ctx is cancelled between phases;
// every dependency failure is reported through Report.Degraded instead.
// Result order is whatever order the reasoning model returned; callers
// wanting a ranked view sort by confidence themselves.
func (a *Analyzer) FindRelatedWork(ctx context.Context, sctx *types.SessionContext, items []*types.WorkItem) (*Report, error) {
	if len(items) == 0 {
		return &Report{Related: []types.RelatedWork{}, Mode: ModeTwoPhase}, nil
	}

	if a.embedder == nil {
		return a.llmOnly(ctx, sctx, items, true, "embedding client not configured")
	}

	contextText := a.formatContextForEmbedding(sctx)
	contextVec := a.embedder.Generate(ctx, contextText)
	if contextVec == nil {
		return a.llmOnly(ctx, sctx, items, true, "context embedding unavailable")
	}

	retained := a.prefilter(ctx, contextVec, items)

	// The only interruption point of meaningful duration besides the network
	// calls themselves: between the pre-filter and the reasoning call.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(retained) == 0 {
		// Embeddings found nothing; the reasoner may still. Not a
		// degradation; this is the designed fallback tier.
		slog.Info("no candidates above similarity threshold, trying LLM-only",
			"candidates", len(items), "threshold", a.config.SimilarityThreshold)
		return a.llmOnly(ctx, sctx, items, false, "")
	}

	sort.Slice(retained, func(i, j int) bool {
		return retained[i].similarity > retained[j].similarity
	})
	if len(retained) > a.config.MaxRerankCandidates {
		retained = retained[:a.config.MaxRerankCandidates]
	}

	slog.Info("embedding pre-filter complete",
		"candidates", len(items), "retained", len(retained))

	return a.rerank(ctx, sctx, retained, ModeTwoPhase, false, "")
}

// prefilter embeds each candidate concurrently (bounded fan-out) and keeps
// those whose similarity to the context strictly exceeds the threshold.
// A candidate whose embedding fails is dropped, not fatal to the batch.
func (a *Analyzer) prefilter(ctx context.Context, contextVec []float32, items []*types.WorkItem) []scored {
	sem := semaphore.NewWeighted(int64(a.config.MaxConcurrentEmbeds))

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		retained []scored
	)

	for _, item := range items {
		wg.Add(1)
		go func(item *types.WorkItem) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			vec := a.candidateEmbedding(ctx, item)
			if vec == nil {
				slog.Debug("skipping candidate without embedding", "id", item.ID)
				return
			}

			sim := similarity.Cosine(contextVec, vec)
			if sim > a.config.SimilarityThreshold {
				mu.Lock()
				retained = append(retained, scored{item: item, similarity: sim})
				mu.Unlock()
			}
		}(item)
	}

	wg.Wait()
	return retained
}

// candidateEmbedding returns the embedding for item, from cache when the
// stored fingerprint matches the item's current content, otherwise freshly
// generated (and cached on success). Returns nil when generation fails.
func (a *Analyzer) candidateEmbedding(ctx context.Context, item *types.WorkItem) []float32 {
	text := item.EmbeddingText()
	fp := fingerprint.Hash(text)

	if a.store != nil {
		if vec := a.store.Get(ctx, item.ID, fp); vec != nil {
			return vec
		}
	}

	vec := a.embedder.Generate(ctx, text)
	if vec != nil && a.store != nil {
		a.store.Set(ctx, item.ID, vec, a.embedder.ModelID(), fp)
	}
	return vec
}

// llmOnly skips similarity scoring: the first MaxLLMCandidates items all
// proceed to the reranker with a placeholder similarity of 1.0.
func (a *Analyzer) llmOnly(ctx context.Context, sctx *types.SessionContext, items []*types.WorkItem, degraded bool, reason string) (*Report, error) {
	if len(items) > a.config.MaxLLMCandidates {
		items = items[:a.config.MaxLLMCandidates]
	}

	candidates := make([]scored, len(items))
	for i, item := range items {
		candidates[i] = scored{item: item, similarity: 1.0}
	}
	return a.rerank(ctx, sctx, candidates, ModeLLMOnly, degraded, reason)
}

// rerankEntry is one item the reasoning model judged truly related
type rerankEntry struct {
	IssueID          string  `json:"issue_id"`
	Confidence       float64 `json:"confidence"`
	Reasoning        string  `json:"reasoning"`
	RelationshipType string  `json:"relationship_type"`
}

type rerankResponse struct {
	Related []rerankEntry `json:"related"`
}

// rerank sends the candidate set to the reasoning model and parses its
// judgment. Every failure path returns an empty degraded report; the
// caller-visible contract never raises.
func (a *Analyzer) rerank(ctx context.Context, sctx *types.SessionContext, candidates []scored, mode Mode, degraded bool, reason string) (*Report, error) {
	empty := func(why string) *Report {
		return &Report{Related: []types.RelatedWork{}, Mode: mode, Degraded: true, DegradedReason: why}
	}

	if a.completions == nil {
		return empty("completion client not configured"), nil
	}

	raw, err := a.completions.Complete(ctx, ai.CompletionRequest{
		System:  "You are an expert at analyzing work tasks and identifying duplicates or related work. Respond with JSON only.",
		Prompt:  a.buildRerankPrompt(sctx, candidates),
		Timeout: a.config.CompletionTimeout,
	})
	if err != nil {
		slog.Warn("rerank call failed", "error", err)
		return empty("reasoning call failed"), nil
	}

	parsed, err := ai.ParseJSON[rerankResponse](raw)
	if err != nil {
		slog.Warn("rerank response unparseable", "error", err)
		return empty("unparseable reasoning response"), nil
	}

	lookup := make(map[string]*types.WorkItem, len(candidates))
	for _, c := range candidates {
		lookup[c.item.ID] = c.item
	}

	related := make([]types.RelatedWork, 0, len(parsed.Related))
	for _, entry := range parsed.Related {
		item, ok := lookup[entry.IssueID]
		if !ok {
			// Hallucinated or stale id: drop silently.
			slog.Debug("dropping rerank entry with unknown issue id", "issue_id", entry.IssueID)
			continue
		}

		relType := types.RelationshipType(entry.RelationshipType)
		if !relType.IsValid() {
			relType = types.RelationshipRelated
		}

		related = append(related, types.RelatedWork{
			Item:             item,
			Confidence:       entry.Confidence,
			Reasoning:        entry.Reasoning,
			RelationshipType: relType,
		})
	}

	return &Report{Related: related, Mode: mode, Degraded: degraded, DegradedReason: reason}, nil
}

package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
	"github.com/kirillkom/friendsfixer/internal/core/ports"
	"github.com/kirillkom/friendsfixer/internal/observability/tracing"
)

type CorrectUseCase struct {
	retriever ports.HintRetriever
	generator ports.CandidateGenerator
	enforcer  *KNoteEnforcer
	post      *PostCorrector
	cfg       CorrectionConfig
}

func NewCorrectUseCase(
	retriever ports.HintRetriever,
	generator ports.CandidateGenerator,
	cfg CorrectionConfig,
) *CorrectUseCase {
	cfg = cfg.normalized()
	return &CorrectUseCase{
		retriever: retriever,
		generator: generator,
		enforcer:  NewKNoteEnforcer(cfg),
		post:      NewPostCorrector(cfg),
		cfg:       cfg,
	}
}

// Correct runs retrieval, generation, reranking, K-note enforcement and
// post-correction for one utterance.
func (uc *CorrectUseCase) Correct(ctx context.Context, userText string) (*domain.CorrectionResult, error) {
	started := time.Now()
	if strings.TrimSpace(userText) == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "correct", "text is required")
	}

	ctx, span := tracing.StartSpan(ctx, "correct")
	defer span.End()
	span.SetAttributes(attribute.String("stage", string(uc.cfg.Stage)))

	hintsIn := uc.retrieve(ctx, "correct.retrieve_in", userText)

	candidates, err := uc.generate(ctx, userText, hintsIn)
	if err != nil {
		tracing.Fail(span, err)
		return nil, err
	}
	best, scored, ok := SelectBest(candidates, hintsIn)
	if !ok {
		err := domain.NewError(domain.ErrTemporary, "select candidate", "generator returned no candidates")
		tracing.Fail(span, err)
		return nil, err
	}

	raw, state := uc.enforcer.Enforce(best.Text, hintsIn, userText)
	if state != domain.KNoteUnchanged {
		tracing.Logger(ctx).Debug("knote_enforced", "state", string(state))
	}

	final := raw
	if uc.cfg.Stage.RunsPost() {
		hintsOut := uc.retrieve(ctx, "correct.retrieve_out", raw)
		final = uc.post.ApplyProtected(raw, unionHints(hintsIn, hintsOut))
	}

	result := &domain.CorrectionResult{
		FinalText:      final,
		RawText:        raw,
		HintsUsed:      hintsIn,
		KNote:          state,
		Candidates:     scored,
		Model:          uc.generator.ModelName(),
		ProcessingTime: time.Since(started),
	}
	tracing.Logger(ctx).Info("correction_completed",
		"hints", len(hintsIn),
		"candidates", len(scored),
		"knote", string(state),
		"duration_ms", result.ProcessingTime.Milliseconds(),
	)
	return result, nil
}

func (uc *CorrectUseCase) retrieve(ctx context.Context, spanName, query string) []domain.Hint {
	_, span := tracing.StartSpan(ctx, spanName)
	defer span.End()
	hints := uc.retriever.Retrieve(query, uc.cfg.TopK, uc.cfg.MinSim)
	span.SetAttributes(attribute.Int("hints", len(hints)))
	return hints
}

func (uc *CorrectUseCase) generate(ctx context.Context, userText string, hints []domain.Hint) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "correct.generate")
	defer span.End()

	req := domain.GenerationRequest{
		SystemPrompt: BuildSystemPrompt(hints, uc.cfg),
		UserText:     userText,
		N:            uc.cfg.RerankN,
	}
	if uc.cfg.BlockBadTokens {
		req.Suppress = suppressionList(hints)
	}

	candidates, err := uc.generator.Generate(ctx, req)
	if err != nil {
		tracing.Fail(span, err)
		return nil, fmt.Errorf("generate candidates: %w", err)
	}
	span.SetAttributes(attribute.Int("candidates", len(candidates)))
	return candidates, nil
}

// Lookup returns hints without generating anything.
func (uc *CorrectUseCase) Lookup(_ context.Context, query string, topK int, minSim float64) ([]domain.Hint, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewError(domain.ErrInvalidInput, "lookup hints", "query is required")
	}
	return uc.retriever.Retrieve(query, topK, minSim), nil
}

func (uc *CorrectUseCase) Stats(context.Context) domain.IndexStats {
	return uc.retriever.Stats()
}

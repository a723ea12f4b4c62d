package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
	"github.com/kirillkom/friendsfixer/internal/core/phraseindex"
)

const handPhoneNote = "'hand phone' is Konglish—people just say 'cell phone'."

type generatorFake struct {
	out  []string
	err  error
	reqs []domain.GenerationRequest
}

func (f *generatorFake) Generate(_ context.Context, req domain.GenerationRequest) ([]string, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

func (f *generatorFake) ModelName() string { return "fake" }

func newKnowledgeRetriever(t *testing.T) *phraseindex.Retriever {
	t.Helper()
	idx, err := phraseindex.Build([]domain.PhraseEntry{
		{Bad: "hand phone", Good: "cell phone"},
		{Bad: "pocket ball", Good: "pool"},
		{Bad: "eye shopping", Good: "window shopping"},
	}, phraseindex.BuildOptions{})
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return phraseindex.NewRetriever(phraseindex.NewHolder(idx), 4, 0.22)
}

func TestCorrectEnforcesKNoteEndToEnd(t *testing.T) {
	gen := &generatorFake{out: []string{
		"Oh no, what happened to your hand phone?",
		"That sounds fun! Want a new cell phone?",
		"Sure.",
	}}
	uc := NewCorrectUseCase(newKnowledgeRetriever(t), gen, DefaultCorrectionConfig())

	res, err := uc.Correct(context.Background(), "I want to buy a hand phone")
	if err != nil {
		t.Fatalf("Correct() error: %v", err)
	}

	lines := strings.Split(res.FinalText, "\n")
	if len(lines) < 2 {
		t.Fatalf("expected at least two lines, got %q", res.FinalText)
	}
	if lines[0] != handPhoneNote {
		t.Fatalf("unexpected first line %q", lines[0])
	}
	if lines[1] != "Anyway, That sounds fun! Want a new cell phone?" {
		t.Fatalf("unexpected second line %q", lines[1])
	}
	if res.KNote != domain.KNoteSynthesized {
		t.Fatalf("expected synthesized k-note, got %q", res.KNote)
	}
	if len(res.HintsUsed) != 1 || res.HintsUsed[0].Konglish != "hand phone" {
		t.Fatalf("unexpected hints: %+v", res.HintsUsed)
	}
	if len(res.Candidates) != 3 || res.Model != "fake" {
		t.Fatalf("unexpected candidates/model: %+v %q", res.Candidates, res.Model)
	}
}

func TestCorrectPostCorrectsTailOnly(t *testing.T) {
	gen := &generatorFake{out: []string{"Your hand phone broke?"}}
	uc := NewCorrectUseCase(newKnowledgeRetriever(t), gen, DefaultCorrectionConfig())

	res, err := uc.Correct(context.Background(), "my hand phone was broken")
	if err != nil {
		t.Fatalf("Correct() error: %v", err)
	}
	if res.RawText != handPhoneNote+"\nAnyway, Your hand phone broke?" {
		t.Fatalf("unexpected raw text %q", res.RawText)
	}
	if res.FinalText != handPhoneNote+"\nAnyway, Your cell phone broke?" {
		t.Fatalf("unexpected final text %q", res.FinalText)
	}
}

func TestCorrectPreStageSkipsPostCorrection(t *testing.T) {
	cfg := DefaultCorrectionConfig()
	cfg.Stage = domain.StagePre
	gen := &generatorFake{out: []string{"Your hand phone broke?"}}
	uc := NewCorrectUseCase(newKnowledgeRetriever(t), gen, cfg)

	res, err := uc.Correct(context.Background(), "my hand phone was broken")
	if err != nil {
		t.Fatalf("Correct() error: %v", err)
	}
	if res.FinalText != res.RawText {
		t.Fatalf("expected final == raw for pre stage, got %q vs %q", res.FinalText, res.RawText)
	}
}

func TestCorrectBuildsGenerationRequest(t *testing.T) {
	gen := &generatorFake{out: []string{"ok"}}
	uc := NewCorrectUseCase(newKnowledgeRetriever(t), gen, DefaultCorrectionConfig())

	if _, err := uc.Correct(context.Background(), "I want to buy a hand phone"); err != nil {
		t.Fatalf("Correct() error: %v", err)
	}
	if len(gen.reqs) != 1 {
		t.Fatalf("expected one generation call, got %d", len(gen.reqs))
	}
	req := gen.reqs[0]
	if req.N != 3 || req.UserText != "I want to buy a hand phone" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if len(req.Suppress) != 1 || req.Suppress[0] != "hand phone" {
		t.Fatalf("unexpected suppression list: %+v", req.Suppress)
	}
	if !strings.Contains(req.SystemPrompt, `K_NOTE_JSON = {"konglish":"hand phone","natural":"cell phone"}`) {
		t.Fatalf("expected k-note json in prompt:\n%s", req.SystemPrompt)
	}
}

func TestCorrectWithoutSuppression(t *testing.T) {
	cfg := DefaultCorrectionConfig()
	cfg.BlockBadTokens = false
	gen := &generatorFake{out: []string{"ok"}}
	uc := NewCorrectUseCase(newKnowledgeRetriever(t), gen, cfg)

	if _, err := uc.Correct(context.Background(), "I want to buy a hand phone"); err != nil {
		t.Fatalf("Correct() error: %v", err)
	}
	if gen.reqs[0].Suppress != nil {
		t.Fatalf("expected no suppression list, got %+v", gen.reqs[0].Suppress)
	}
}

func TestCorrectErrors(t *testing.T) {
	retriever := newKnowledgeRetriever(t)

	uc := NewCorrectUseCase(retriever, &generatorFake{}, DefaultCorrectionConfig())
	if _, err := uc.Correct(context.Background(), "   "); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := uc.Correct(context.Background(), "hello"); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary for empty batch, got %v", err)
	}

	failing := &generatorFake{err: domain.WrapError(domain.ErrTemporary, "ollama chat", errors.New("connection refused"))}
	uc = NewCorrectUseCase(retriever, failing, DefaultCorrectionConfig())
	if _, err := uc.Correct(context.Background(), "hello"); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected generator error to keep its kind, got %v", err)
	}
}

func TestCorrectWithoutIndexPassesCandidateThrough(t *testing.T) {
	retriever := phraseindex.NewRetriever(phraseindex.NewHolder(nil), 4, 0.22)
	gen := &generatorFake{out: []string{"  Hey there!  "}}
	uc := NewCorrectUseCase(retriever, gen, DefaultCorrectionConfig())

	res, err := uc.Correct(context.Background(), "I want to buy a hand phone")
	if err != nil {
		t.Fatalf("Correct() error: %v", err)
	}
	if res.FinalText != "  Hey there!  " || res.KNote != domain.KNoteUnchanged {
		t.Fatalf("expected untouched candidate, got %+v", res)
	}
	if len(res.HintsUsed) != 0 {
		t.Fatalf("expected no hints, got %+v", res.HintsUsed)
	}
}

func TestLookupValidatesQuery(t *testing.T) {
	uc := NewCorrectUseCase(newKnowledgeRetriever(t), &generatorFake{}, DefaultCorrectionConfig())
	if _, err := uc.Lookup(context.Background(), "", 4, 0.22); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	hints, err := uc.Lookup(context.Background(), "let's play pocket ball", 4, 0.22)
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if len(hints) != 1 || hints[0].Natural != "pool" {
		t.Fatalf("unexpected hints: %+v", hints)
	}
	if stats := uc.Stats(context.Background()); stats.Entries != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

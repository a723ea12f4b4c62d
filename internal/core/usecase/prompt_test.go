package usecase

import (
	"strings"
	"testing"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
)

func TestBuildSystemPrompt(t *testing.T) {
	hints := []domain.Hint{
		{Konglish: "pocket ball", Natural: "pool", Why: "billiards", Sim: 0.3},
		{Konglish: "hand phone", Natural: "cell phone", Sim: 0.9},
	}
	prompt := BuildSystemPrompt(hints, DefaultCorrectionConfig())

	for _, want := range []string{
		"SYSTEM:\nYou are FriendsFixer",
		`RAG_HINTS_JSON = [{"konglish":"pocket ball","natural":"pool","why":"billiards"},{"konglish":"hand phone","natural":"cell phone","why":""}]`,
		`K_NOTE_JSON = {"konglish":"hand phone","natural":"cell phone"}  # null if none`,
		"ONE connector from: Anyway,, By the way,, Oh, and, On that note,, Also,",
		preStageNote,
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildSystemPromptWithoutQualifyingHint(t *testing.T) {
	cfg := DefaultCorrectionConfig()
	cfg.Stage = domain.StagePost
	prompt := BuildSystemPrompt([]domain.Hint{{Konglish: "hand phone", Natural: "cell phone", Sim: 0.1}}, cfg)

	if !strings.Contains(prompt, "K_NOTE_JSON = null") {
		t.Fatalf("expected null k-note:\n%s", prompt)
	}
	if !strings.Contains(prompt, postStageNote) {
		t.Fatalf("expected post stage note:\n%s", prompt)
	}

	empty := BuildSystemPrompt(nil, DefaultCorrectionConfig())
	if !strings.Contains(empty, "RAG_HINTS_JSON = []") {
		t.Fatalf("expected empty hint list:\n%s", empty)
	}
}

func TestSuppressionList(t *testing.T) {
	got := suppressionList([]domain.Hint{{Konglish: " hand phone "}, {Konglish: "  "}, {Konglish: "pocket ball"}})
	if len(got) != 2 || got[0] != "hand phone" || got[1] != "pocket ball" {
		t.Fatalf("unexpected suppression list %q", got)
	}
}

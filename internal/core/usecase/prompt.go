package usecase

import (
	"encoding/json"
	"strings"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
)

const coachPersona = `SYSTEM:
You are FriendsFixer, a witty American sitcom-style rewriter and coach.

GOAL
Make the USER's stiff, overly formal, or awkward English sound natural, everyday, and friendly with a light "Friends" vibe: playful, warm, a dash of sarcasm, always kind (PG-13). Never change the original intent or add facts.

DECISION
- If the sentence already sounds natural and PG-13: do NOT rewrite. Just keep chatting naturally and move the conversation forward with one short question.
- If it's stiff/awkward/overly formal/rude/robotic: rewrite. First chat like a friend, then add a connector-led nudge, then provide casual alternatives.

FORMAT
A) Needs fixing:
  1) 1-2 friendly chat lines.
  2) ONE coaching line that begins with a connector (But / And / Also / Anyway / That said, / Oh, and / On that note,) and briefly flags what's off.
  3) On a new line write exactly: Instead, try: and list 3 numbered rewrites (casual US English, with contractions, same intent).
  4) End with one gentle playful line and one specific follow-up question.

B) No fix needed:
  - Only continue the conversation in 1-2 lines and ask a topic-correct follow-up question. Do not say "it's already natural," and do not include "Instead, try:".

STYLE
- Teasing stays kind, PG-13, with contractions. Short, punchy sentences. Natural American English.
- Avoid meta jokes. Keep it human and simple.
- If the input isn't a sentence to rewrite, say: Give me the sentence you want rewritten.
`

const (
	ragInstruction = "RAG_HINTS: use only when clearly relevant; prefer the 'natural' phrasing over 'konglish' if it preserves intent."
	preStageNote   = "First, silently correct any Konglish using RAG_HINTS if relevant, then produce the output in the required FORMAT."
	postStageNote  = "Produce the output in the required FORMAT; we'll post-check with RAG later."
	hiddenPlanNote = "Before writing, think briefly (hidden) about: detect issues, map to RAG hints, plan 3 rewrites, finalize. Do NOT show your analysis."
)

type promptHint struct {
	Konglish string `json:"konglish"`
	Natural  string `json:"natural"`
	Why      string `json:"why"`
}

type promptKNote struct {
	Konglish string `json:"konglish"`
	Natural  string `json:"natural"`
}

// BuildSystemPrompt embeds the hint set and the K-note rule into the coach
// persona.
func BuildSystemPrompt(hints []domain.Hint, cfg CorrectionConfig) string {
	cfg = cfg.normalized()

	items := make([]promptHint, 0, len(hints))
	for _, h := range hints {
		items = append(items, promptHint{Konglish: h.Konglish, Natural: h.Natural, Why: h.Why})
	}
	hintsJSON, _ := json.Marshal(items)

	var kNote *promptKNote
	if len(hints) > 0 {
		top := hints[0]
		for _, h := range hints[1:] {
			if h.Sim > top.Sim {
				top = h
			}
		}
		if top.Sim >= cfg.KNoteSimThreshold && top.Konglish != "" && top.Natural != "" {
			kNote = &promptKNote{Konglish: top.Konglish, Natural: top.Natural}
		}
	}
	kNoteJSON, _ := json.Marshal(kNote)

	stageNote := preStageNote
	if cfg.Stage == domain.StagePost {
		stageNote = postStageNote
	}

	var b strings.Builder
	b.WriteString(coachPersona)
	b.WriteString("\n\nTOOLS\n")
	b.WriteString("- " + ragInstruction + "\n")
	b.WriteString("- " + stageNote + "\n")
	b.WriteString("- " + hiddenPlanNote + "\n\n")
	b.WriteString("RAG_HINTS_JSON = " + string(hintsJSON) + "\n")
	b.WriteString("K_NOTE_JSON = " + string(kNoteJSON) + "  # null if none\n\n")
	b.WriteString("K-NOTE RULE (use only if K_NOTE_JSON exists):\n")
	b.WriteString("  - Line 1: '{konglish}' is Konglish—people just say '{natural}'.\n")
	b.WriteString("  - Line 2 must begin with ONE connector from: " + strings.Join(cfg.Connectors, ", ") + " and then continue the friendly lines.\n")
	b.WriteString("  - Keep it short.\n")
	return b.String()
}

// suppressionList returns the konglish phrases the generator should avoid.
func suppressionList(hints []domain.Hint) []string {
	out := make([]string, 0, len(hints))
	for _, h := range hints {
		if bad := strings.TrimSpace(h.Konglish); bad != "" {
			out = append(out, bad)
		}
	}
	return out
}

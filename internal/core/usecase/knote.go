package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
	"github.com/kirillkom/friendsfixer/internal/core/lexical"
)

const (
	kNoteMarker  = "is Konglish"
	kNoteMaxWord = 3
)

// KNoteEnforcer rewrites the head of a candidate so the strongest hint is
// announced on line 1 and line 2 opens with a connector.
type KNoteEnforcer struct {
	cfg CorrectionConfig
}

func NewKNoteEnforcer(cfg CorrectionConfig) *KNoteEnforcer {
	return &KNoteEnforcer{cfg: cfg.normalized()}
}

// KNoteLine formats the canonical announcement line.
func KNoteLine(bad, good string) string {
	return fmt.Sprintf("'%s' is Konglish—people just say '%s'.", bad, good)
}

// Enforce applies the K-note format to text using the top hint located in
// userText. Text without a qualifying hint is returned unmodified.
func (e *KNoteEnforcer) Enforce(text string, hints []domain.Hint, userText string) (string, domain.KNoteState) {
	if !e.cfg.EnforceKNote {
		return text, domain.KNoteUnchanged
	}
	top, ok := e.topHint(hints)
	if !ok {
		return text, domain.KNoteUnchanged
	}
	badSpan, goodSpan, ok := e.terms(userText, top)
	if !ok {
		slog.Debug("knote_skipped", "konglish", top.Konglish, "error", domain.ErrAlignmentMiss.Error())
		return text, domain.KNoteUnchanged
	}

	lines := strings.Split(strings.TrimSpace(text), "\n")
	if lines[0] == "" && len(lines) == 1 {
		lines = nil
	}

	if len(lines) > 0 && strings.Contains(lines[0], kNoteMarker) {
		second := ""
		if len(lines) > 1 {
			second = strings.TrimSpace(lines[1])
		}
		out := append([]string{lines[0], e.withConnector(second)}, tail(lines, 2)...)
		return strings.TrimSpace(strings.Join(out, "\n")), domain.KNoteAligned
	}

	first := ""
	if len(lines) > 0 {
		first = strings.TrimSpace(lines[0])
	}
	out := append([]string{KNoteLine(badSpan, goodSpan), e.withConnector(first)}, tail(lines, 1)...)
	return strings.TrimSpace(strings.Join(out, "\n")), domain.KNoteSynthesized
}

// topHint picks the first hint with maximum sim and checks it qualifies.
func (e *KNoteEnforcer) topHint(hints []domain.Hint) (domain.Hint, bool) {
	if len(hints) == 0 {
		return domain.Hint{}, false
	}
	top := hints[0]
	for _, h := range hints[1:] {
		if h.Sim > top.Sim {
			top = h
		}
	}
	if top.Sim < e.cfg.KNoteSimThreshold {
		return domain.Hint{}, false
	}
	return top, true
}

func (e *KNoteEnforcer) terms(userText string, h domain.Hint) (string, string, bool) {
	bad := lexical.CollapseSpace(h.Konglish)
	good := lexical.CollapseSpace(h.Natural)
	if bad == "" || good == "" {
		return "", "", false
	}
	span, ok := lexical.Locate(bad, userText, e.cfg.SpanMaxNGram)
	if !ok {
		return "", "", false
	}
	goodSpan, ok := lexical.ExtractReplacement(bad, good, span.Text)
	if !ok {
		goodSpan = good
	}
	return span.Text, lexical.LimitWords(goodSpan, kNoteMaxWord), true
}

func (e *KNoteEnforcer) withConnector(line string) string {
	for _, c := range e.cfg.Connectors {
		if strings.HasPrefix(line, c) {
			return line
		}
	}
	return strings.TrimSpace(e.cfg.Connectors[0] + " " + line)
}

func tail(lines []string, from int) []string {
	if len(lines) <= from {
		return nil
	}
	return lines[from:]
}

package phraseindex

import (
	"log/slog"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
	"github.com/kirillkom/friendsfixer/internal/core/lexical"
)

const candidateFactor = 3

type Retriever struct {
	holder *Holder
	topK   int
	minSim float64
}

// NewRetriever binds the defaults used when Retrieve is called with
// non-positive topK or minSim.
func NewRetriever(holder *Holder, topK int, minSim float64) *Retriever {
	if topK <= 0 {
		topK = 4
	}
	return &Retriever{holder: holder, topK: topK, minSim: minSim}
}

// Retrieve returns at most topK hints ordered by descending similarity.
// Hints below minSim are skipped and each bad phrase is emitted once. A
// missing index yields no hints.
func (r *Retriever) Retrieve(query string, topK int, minSim float64) []domain.Hint {
	if topK <= 0 {
		topK = r.topK
	}
	if minSim <= 0 {
		minSim = r.minSim
	}

	idx := r.holder.Load()
	if idx.Len() == 0 {
		slog.Debug("retrieval_degraded", "error", domain.ErrRetrievalDegraded.Error())
		return []domain.Hint{}
	}

	ranked := idx.Similarity(lexical.Normalize(query))
	if limit := topK * candidateFactor; len(ranked) > limit {
		ranked = ranked[:limit]
	}

	hints := make([]domain.Hint, 0, topK)
	seen := make(map[string]struct{}, topK)
	for _, s := range ranked {
		if s.Score < minSim {
			continue
		}
		entry := idx.Entry(s.Doc)
		if _, dup := seen[entry.Bad]; dup {
			continue
		}
		seen[entry.Bad] = struct{}{}
		hints = append(hints, domain.Hint{
			Konglish: entry.Bad,
			Natural:  entry.Good,
			Why:      entry.Context,
			Sim:      s.Score,
		})
		if len(hints) >= topK {
			break
		}
	}
	return hints
}

func (r *Retriever) Stats() domain.IndexStats {
	return r.holder.Load().Stats()
}

// Package phraseindex is the sparse TF-IDF index over knowledge-base bad
// phrases and the retriever that turns similarity scores into hints.
//
// An Index is immutable after Build and safe for concurrent queries. A
// reload builds a fresh Index and swaps it into a Holder.
package phraseindex

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/kirillkom/friendsfixer/internal/core/domain"
	"github.com/kirillkom/friendsfixer/internal/core/lexical"
)

const (
	minNGram = 1
	maxNGram = 3
)

type BuildOptions struct {
	// WithContext appends each entry's context to its indexed text.
	WithContext bool
	// MaxDF drops n-grams that occur in more than this share of documents.
	// Zero or values >= 1 keep every n-gram.
	MaxDF float64
}

type posting struct {
	doc    int
	weight float64
}

type Index struct {
	entries     []domain.PhraseEntry
	withContext bool

	vocab    map[string]int
	idf      []float64
	postings [][]posting
}

// Scored is one document and its cosine similarity to a query.
type Scored struct {
	Doc   int
	Score float64
}

func Build(entries []domain.PhraseEntry, opts BuildOptions) (*Index, error) {
	if len(entries) == 0 {
		return nil, domain.NewError(domain.ErrIndexBuild, "build phrase index", "no phrase entries")
	}

	docTerms := make([]map[string]int, len(entries))
	df := make(map[string]int, len(entries)*4)
	order := make([]string, 0, len(entries)*4)
	for i, e := range entries {
		tf := termCounts(e.IndexText(opts.WithContext))
		docTerms[i] = tf
		for _, term := range sortedTerms(tf) {
			if _, seen := df[term]; !seen {
				order = append(order, term)
			}
			df[term]++
		}
	}

	n := len(entries)
	maxCount := n
	if opts.MaxDF > 0 && opts.MaxDF < 1 {
		maxCount = int(math.Floor(opts.MaxDF * float64(n)))
	}

	idx := &Index{
		entries:     entries,
		withContext: opts.WithContext,
		vocab:       make(map[string]int, len(order)),
	}
	for _, term := range order {
		if df[term] > maxCount {
			continue
		}
		idx.vocab[term] = len(idx.idf)
		idx.idf = append(idx.idf, smoothIDF(n, df[term]))
	}
	if len(idx.vocab) == 0 {
		return nil, domain.NewError(domain.ErrIndexBuild, "build phrase index",
			fmt.Sprintf("no terms left after pruning %d entries", n))
	}

	idx.postings = make([][]posting, len(idx.idf))
	for doc, tf := range docTerms {
		vec := idx.weigh(tf)
		for _, id := range sortedIDs(vec) {
			idx.postings[id] = append(idx.postings[id], posting{doc: doc, weight: vec[id]})
		}
	}
	return idx, nil
}

func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

func (idx *Index) Entry(doc int) domain.PhraseEntry {
	return idx.entries[doc]
}

func (idx *Index) Stats() domain.IndexStats {
	if idx == nil {
		return domain.IndexStats{}
	}
	return domain.IndexStats{
		Entries:     len(idx.entries),
		Vocabulary:  len(idx.vocab),
		WithContext: idx.withContext,
		Loaded:      true,
	}
}

// Similarity scores every document against query with scores in [0, 1].
// The result is ordered by descending score; equal scores keep document order.
func (idx *Index) Similarity(query string) []Scored {
	if idx.Len() == 0 {
		return nil
	}
	scores := make([]float64, len(idx.entries))
	for id, qw := range idx.weigh(termCounts(query)) {
		for _, p := range idx.postings[id] {
			scores[p.doc] += qw * p.weight
		}
	}

	out := make([]Scored, len(scores))
	for doc, s := range scores {
		// Rounding can push a self-match past 1.
		out[doc] = Scored{Doc: doc, Score: min(s, 1)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// weigh maps raw n-gram counts to an L2-normalized tf·idf vector over the
// fixed vocabulary. Unknown n-grams are dropped.
func (idx *Index) weigh(tf map[string]int) map[int]float64 {
	vec := make(map[int]float64, len(tf))
	var sumSq float64
	for term, count := range tf {
		id, ok := idx.vocab[term]
		if !ok {
			continue
		}
		w := float64(count) * idx.idf[id]
		vec[id] = w
		sumSq += w * w
	}
	if sumSq == 0 {
		return nil
	}
	norm := math.Sqrt(sumSq)
	for id := range vec {
		vec[id] /= norm
	}
	return vec
}

func smoothIDF(n, df int) float64 {
	return math.Log(float64(1+n)/float64(1+df)) + 1
}

func termCounts(text string) map[string]int {
	tokens := lexical.Tokenize(text)
	tf := make(map[string]int, len(tokens)*maxNGram)
	for n := minNGram; n <= maxNGram; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			tf[strings.Join(tokens[i:i+n], " ")]++
		}
	}
	return tf
}

func sortedTerms(tf map[string]int) []string {
	out := make([]string, 0, len(tf))
	for term := range tf {
		out = append(out, term)
	}
	sort.Strings(out)
	return out
}

func sortedIDs(vec map[int]float64) []int {
	out := make([]int, 0, len(vec))
	for id := range vec {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

package domain

// PhraseEntry is one bad→good pair from the knowledge base. Entries are
// immutable once an index has been built from them.
type PhraseEntry struct {
	Bad     string `json:"bad"`
	Good    string `json:"good"`
	Context string `json:"context,omitempty"`
}

// IndexText is the string the phrase index is fitted on.
func (e PhraseEntry) IndexText(withContext bool) string {
	if !withContext {
		return e.Bad
	}
	return e.Bad + " || " + e.Context
}

// Hint is a retrieved phrase pair scored against one query.
type Hint struct {
	Konglish string  `json:"konglish"`
	Natural  string  `json:"natural"`
	Why      string  `json:"why"`
	Sim      float64 `json:"sim"`
}

// Candidate is one generated output and its preference score.
type Candidate struct {
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

package lexical

func wordSet(words ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		out[w] = struct{}{}
	}
	return out
}

var stopWords = wordSet(
	"a", "an", "the", "to", "for", "of", "in", "on", "at", "by", "and", "or", "but", "so",
	"that", "this", "these", "those", "is", "are", "was", "were", "am", "be", "been", "being",
	"do", "does", "did", "have", "has", "had", "get", "got", "gotten",
	"we", "i", "you", "they", "he", "she", "it",
	"my", "your", "his", "her", "their", "our", "me", "him", "them", "us",
	"let", "let's", "just",
)

var timeWords = wordSet(
	"last", "next", "yesterday", "today", "tonight", "tomorrow",
	"morning", "afternoon", "evening", "night", "nights", "day", "days",
	"week", "weeks", "weekend", "weekends",
	"month", "months", "year", "years", "season", "seasons",
	"spring", "summer", "fall", "autumn", "winter",
	"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday",
)

var colorWords = wordSet(
	"red", "blue", "green", "black", "white", "gray", "grey",
	"yellow", "pink", "purple", "brown", "orange",
)

var baseVerbs = wordSet(
	"play", "played", "buy", "go", "come", "make", "take", "see", "watch",
	"call", "ask", "need", "want", "like", "love", "use", "try",
	"pay", "drive", "walk", "run", "eat", "drink", "work", "study",
	"have", "get", "give", "feel", "think", "say", "tell",
)

func has(set map[string]struct{}, w string) bool {
	_, ok := set[w]
	return ok
}

func isDigits(w string) bool {
	if w == "" {
		return false
	}
	for _, r := range w {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// isTimeOrMeta covers time/day/season words, basic colors and numbers.
func isTimeOrMeta(w string) bool {
	return has(timeWords, w) || has(colorWords, w) || isDigits(w)
}

func isProbableVerb(w string) bool {
	if has(baseVerbs, w) {
		return true
	}
	return hasSuffix(w, "ed") || hasSuffix(w, "ing")
}

func hasSuffix(w, suffix string) bool {
	return len(w) >= len(suffix) && w[len(w)-len(suffix):] == suffix
}

func contentTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if has(stopWords, t) || isTimeOrMeta(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

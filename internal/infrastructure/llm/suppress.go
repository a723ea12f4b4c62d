// Package llm holds helpers shared by the candidate generators.
package llm

import (
	"strconv"
	"strings"
)

// AppendSuppression adds an instruction listing phrases the model must not
// emit. Backends without token-level bans rely on it instead.
func AppendSuppression(system string, phrases []string) string {
	if len(phrases) == 0 {
		return system
	}
	quoted := make([]string, 0, len(phrases))
	for _, p := range phrases {
		quoted = append(quoted, strconv.Quote(p))
	}
	return system + "\nNEVER write these phrases verbatim: " + strings.Join(quoted, ", ") + "\n"
}

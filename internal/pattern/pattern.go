// Package pattern classifies free text into thematic pattern labels by
// counting marker phrase occurrences against a fixed table.
package pattern

import (
	"regexp"
	"sort"

	"github.com/vmunix/recgo/pkg/textnorm"
)

// A pattern is included in a classification once its marker phrases occur
// at least this many times in total. Fixed design constant.
const matchThreshold = 3

// table maps each pattern label to its marker phrases. Markers are matched
// case-insensitively on word boundaries, never as substrings of longer
// words. The table is data, not dispatch, so it stays trivially testable.
var table = map[string][]string{
	"Unreliable Reality": {
		"simulation", "dream", "hallucination", "memory", "illusion",
		"perception", "what is real", "alternate reality", "delusion",
	},
	"Corporate Dystopia": {
		"corporation", "megacorp", "dystopia", "dystopian", "surveillance",
		"conglomerate", "oppressive", "consumerism", "late capitalism",
	},
	"Antihero Descent": {
		"antihero", "moral decline", "corruption", "descent", "crime lord",
		"dark path", "ruthless", "power corrupts", "breaking point",
	},
	"Slow-Burn Mystery": {
		"mystery", "investigation", "detective", "clue", "secret",
		"unsolved", "conspiracy", "missing person", "cold case",
	},
	"Found Family": {
		"found family", "misfits", "unlikely allies", "band together",
		"chosen family", "ragtag", "outcasts", "belonging",
	},
	"Heist & Con": {
		"heist", "con artist", "robbery", "score", "double cross",
		"getaway", "mastermind", "inside job", "grifter",
	},
	"Time Displacement": {
		"time travel", "time loop", "paradox", "timeline", "past and future",
		"temporal", "groundhog", "rewind", "destiny",
	},
	"Small Town Secrets": {
		"small town", "tight-knit", "local sheriff", "everyone knows",
		"buried secret", "quiet community", "disappearance", "rumors",
	},
	"Survival Frontier": {
		"survival", "stranded", "wilderness", "against the odds",
		"uncharted", "outpost", "hostile environment", "last of",
	},
	"Legal Reckoning": {
		"trial", "courtroom", "verdict", "lawyer", "justice system",
		"wrongful conviction", "testimony", "prosecutor", "appeal",
	},
}

// matchers holds one compiled regex per marker, built once at init.
type matcher struct {
	label string
	res   []*regexp.Regexp
}

var matchers = buildMatchers()

func buildMatchers() []matcher {
	labels := make([]string, 0, len(table))
	for label := range table {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := make([]matcher, 0, len(labels))
	for _, label := range labels {
		m := matcher{label: label}
		for _, phrase := range table[label] {
			m.res = append(m.res, regexp.MustCompile(`\b`+regexp.QuoteMeta(textnorm.Fold(phrase))+`\b`))
		}
		out = append(out, m)
	}
	return out
}

// Labels returns the closed vocabulary of pattern labels, sorted.
func Labels() []string {
	labels := make([]string, 0, len(matchers))
	for _, m := range matchers {
		labels = append(labels, m.label)
	}
	return labels
}

// Classify returns the sorted set of pattern labels whose markers occur at
// least three times in the text. Deterministic and pure.
func Classify(text string) []string {
	if text == "" {
		return nil
	}
	folded := textnorm.Fold(text)

	var labels []string
	for _, m := range matchers {
		count := 0
		for _, re := range m.res {
			count += len(re.FindAllStringIndex(folded, -1))
			if count >= matchThreshold {
				break
			}
		}
		if count >= matchThreshold {
			labels = append(labels, m.label)
		}
	}
	return labels
}

// Overlap returns the number of labels two sorted classifications share.
func Overlap(a, b []string) int {
	n, i, j := 0, 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			n++
			i++
			j++
		case a[i] < b[j]:
			i++
		default:
			j++
		}
	}
	return n
}

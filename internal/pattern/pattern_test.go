package pattern

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Threshold(t *testing.T) {
	// Exactly 2 marker occurrences: below the threshold
	two := "A heist goes wrong. The heist crew scatters."
	assert.NotContains(t, Classify(two), "Heist & Con")

	// Exactly 3: included
	three := "A heist goes wrong. The heist crew plans another heist."
	assert.Contains(t, Classify(three), "Heist & Con")
}

func TestClassify_WholeWordsOnly(t *testing.T) {
	// "scores" and "scoreboard" must not count as the marker "score"
	text := "High scores on the scoreboard. More scores. Even more scores."
	assert.NotContains(t, Classify(text), "Heist & Con")
}

func TestClassify_CaseInsensitive(t *testing.T) {
	text := "SIMULATION inside a Dream inside a hallucination."
	assert.Contains(t, Classify(text), "Unreliable Reality")
}

func TestClassify_MixedMarkersAccumulate(t *testing.T) {
	// Three different markers of one pattern, one occurrence each
	text := "A detective follows a clue about a conspiracy."
	assert.Equal(t, []string{"Slow-Burn Mystery"}, Classify(text))
}

func TestClassify_Empty(t *testing.T) {
	assert.Empty(t, Classify(""))
	assert.Empty(t, Classify("nothing thematic here at all"))
}

func TestClassify_Deterministic(t *testing.T) {
	text := strings.Repeat("dystopian corporation surveillance ", 2) +
		"time loop paradox timeline"
	first := Classify(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Classify(text))
	}
	// Sorted output
	assert.Equal(t, []string{"Corporate Dystopia", "Time Displacement"}, first)
}

func TestOverlap(t *testing.T) {
	a := []string{"Antihero Descent", "Corporate Dystopia", "Heist & Con"}
	b := []string{"Corporate Dystopia", "Heist & Con", "Unreliable Reality"}
	assert.Equal(t, 2, Overlap(a, b))
	assert.Equal(t, 0, Overlap(a, nil))
	assert.Equal(t, 3, Overlap(a, a))
}

func TestLabels_Closed(t *testing.T) {
	labels := Labels()
	assert.NotEmpty(t, labels)
	assert.Contains(t, labels, "Unreliable Reality")
	assert.Contains(t, labels, "Corporate Dystopia")
	assert.IsNonDecreasing(t, labels, "labels are sorted")
}

package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"lowercase", "Fight Club", "fight club"},
		{"accents", "Léon: The Professional", "leon professional"},
		{"leading article", "The Matrix", "matrix"},
		{"ampersand", "Law & Order", "law and order"},
		{"punctuation", "M.A.S.H.", "m a s h"},
		{"apostrophe", "Ocean's Eleven", "oceans eleven"},
		{"extra whitespace", "  Spirited   Away ", "spirited away"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanTitle(tt.title))
		})
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "amelie", Fold("Amélie"))
	assert.Equal(t, "uber", Fold("ÜBER"))
}

package lyrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrentWord(t *testing.T) {
	text := "The quick brown\nfox jumps over the lazy_dog."

	assert.Equal(t, "The", CurrentWord(text, 0))
	assert.Equal(t, "The", CurrentWord(text, 2))
	assert.Equal(t, "brown", CurrentWord(text, 10))
	assert.Equal(t, "dog.", CurrentWord(text, 43))
	assert.Equal(t, "dog.", CurrentWord(text, 100))
}

func TestSlashifyAll(t *testing.T) {
	tests := []struct {
		lyrics, word, slashed, want string
	}{
		{"ggg", "ggg", "ggg", "ggg"},
		{"ggg ggg", "ggg", "gg/g", "gg/g gg/g"},
		{"ggg_ggg", "ggg", "gg/g", "gg/g_gg/g"},
		{"ggg\nggg", "ggg", "gg/g", "gg/g\ngg/g"},
		{"Ggg ggg", "ggg", "gg/g", "Gg/g gg/g"},
		{"Ggg ggg", "ggg", "ggg/", "Ggg/ ggg/"},
		{"Ggg ggg,\nggg ggg!", "ggg", "gg/g", "Gg/g gg/g,\ngg/g gg/g!"},
		{"Ggg end\nbegin ggg", "Ggg", "G/gg", "G/gg end\nbegin g/gg"},
		{"al/chemy", "alchemy", "al/chem/y", "al/chem/y"},
	}

	for _, tt := range tests {
		t.Run(tt.lyrics, func(t *testing.T) {
			assert.Equal(t, tt.want, SlashifyAll(tt.lyrics, tt.word, tt.slashed))
		})
	}
}

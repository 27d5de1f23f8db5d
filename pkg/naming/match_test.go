package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFold(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Pokémon", "pokemon"},
		{"Re:Zero - Starting Life", "re zero starting life"},
		{"  SPY×FAMILY  ", "spy family"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.input), "Fold(%q)", tt.input)
	}
}

func TestRank(t *testing.T) {
	candidates := []Candidate{
		{Key: 1, Names: []string{"Магическая битва", "Jujutsu Kaisen"}},
		{Key: 2, Names: []string{"Ван-Пис", "One Piece"}},
		{Key: 3, Names: []string{"Jujutsu Kaisen 0"}},
		{Key: 4, Names: []string{"Bocchi the Rock!"}},
	}

	got := Rank("jujutsu kaisen", candidates, 0)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Key)
	assert.Equal(t, "Jujutsu Kaisen", got[0].Name)
	assert.InDelta(t, 1.0, got[0].Score, 0.0001)
	assert.Equal(t, 3, got[1].Key)

	got = Rank("jujutsu kaisen", candidates, 1)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Key)
}

func TestRank_NoMatch(t *testing.T) {
	candidates := []Candidate{{Key: 1, Names: []string{"One Piece"}}}

	assert.Empty(t, Rank("zzzzzz qqqq", candidates, 5))
	assert.Empty(t, Rank("", candidates, 5))
	assert.Empty(t, Rank("one", nil, 5))
}

func TestRank_Substring(t *testing.T) {
	candidates := []Candidate{{Key: 7, Names: []string{"Frieren: Beyond Journey's End"}}}

	got := Rank("journey", candidates, 5)
	require.Len(t, got, 1)
	assert.GreaterOrEqual(t, got[0].Score, 0.9)
}

package moderation

import (
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

func newModerator(t *testing.T, words ...string) *Moderator {
	mod, err := NewModerator(words, replacementChar, logs.GetLoggerFromLevel(slog.LevelDebug))
	require.NoError(t, err)
	return mod
}

func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	mod := newModerator(t, "troll", "cheat", "loser")

	tests := []struct {
		name     string
		input    string
		expected string
		words    []string
	}{
		{"Whole nickname", "Troll", "*****", []string{"troll"}},
		{"Decorated nickname", "xX_tr0ll_Xx", "xX_*****_Xx", []string{"troll"}},
		{"Leet speak behind dots", "L.0.S.3.R", "*********", []string{"loser"}},
		{"Kept spacing", "Cheat Master", "***** Master", []string{"cheat"}},
		{"Repeated", "troll troll", "***** *****", []string{"troll", "troll"}},
		// Spaces are noise, so a word split across two words is still found
		{"Spacing does not hide a word", "lo serious", "******ious", []string{"loser"}},
		{"Close but clean", "Chat with me", "Chat with me", nil},
		{"Accents", "Élodie", "Élodie", nil},
		{"Empty", "", "", nil},
	}

	for _, tt := range tests {
		content, words := mod.Censor(tt.input)
		req.Equal(tt.expected, content, tt.name)
		req.Equal(tt.words, words, tt.name)
	}
}

func TestModerator_NoiseOnlyWordsAreDropped(t *testing.T) {
	req := require.New(t)

	// Given a list polluted by punctuation only entries
	mod := newModerator(t, "...", "--", "", "troll")

	// Then real words are still censored
	content, words := mod.Censor("Big troll")
	req.Equal("Big *****", content)
	req.Equal([]string{"troll"}, words)

	// And punctuation is left alone
	content, words = mod.Censor("Hello ... --")
	req.Equal("Hello ... --", content)
	req.Nil(words)
}

func TestModerator_RejectsNickname(t *testing.T) {
	req := require.New(t)
	mod := newModerator(t, "troll", "cheat")

	tests := []struct {
		nickname string
		rejected bool
	}{
		{"Tr0ll_Hunter", true},
		{"the-cheat", true},
		{"CH3@T", true},
		{"Alice", false},
		{"HOST", false},
		{"", false},
	}
	for _, tt := range tests {
		req.Equal(tt.rejected, mod.Rejects(tt.nickname), tt.nickname)
	}
}

package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeOrigin(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"https://book.douban.com/subject/27119879/", "book.douban.com/subject/27119879"},
		{"https://movie.douban.com/subject/35235192", "movie.douban.com/subject/35235192"},
		{"book.douban.com/subject/27119879", "book.douban.com/subject/27119879"},
		{"http://bangumi.tv/subject/8", "http://bangumi.tv/subject/8"},
		{"", ""},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, NormalizeOrigin(test.input))
	}
}

func TestTruncateRunes(t *testing.T) {
	require.Equal(t, "行星与共", TruncateRunes("行星与共 プラネット・ウィズ", 4))
	require.Equal(t, "short", TruncateRunes("short", 100))
	require.Equal(t, "", TruncateRunes("", 3))
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "thehungergames", NormalizeName("  The Hunger\tGames \n"))
}

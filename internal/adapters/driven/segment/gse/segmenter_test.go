package gse

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCut_DictionaryWords(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	words := s.Cut("央行宣布降准释放流动性")
	assert.Contains(t, words, "央行")
	assert.Contains(t, words, "宣布")
	assert.NotContains(t, words, "行宣")
	assert.NotContains(t, words, "布降")
}

func TestCut_UserWords(t *testing.T) {
	s, err := New("A股", " ")
	require.NoError(t, err)

	words := s.Cut("A股大涨")
	assert.Contains(t, words, "A股")
}

func TestCut_DropsPunctuation(t *testing.T) {
	s, err := New()
	require.NoError(t, err)

	for _, w := range s.Cut("降息！ 股市，大涨") {
		assert.NotContains(t, []string{"！", "，", " "}, w)
	}
	assert.Nil(t, s.Cut(""))
}

func TestRestoreCase(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		pieces []string
		want   []string
	}{
		{name: "lowered latin", text: "Apple发布iPhone", pieces: []string{"apple", "发布", "iphone"}, want: []string{"Apple", "发布", "iPhone"}},
		{name: "unchanged", text: "央行降息", pieces: []string{"央行", "降息"}, want: []string{"央行", "降息"}},
		{name: "misaligned", text: "央行降息", pieces: []string{"股市"}, want: []string{"股市"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, restoreCase(tt.text, tt.pieces)); diff != "" {
				t.Errorf("restoreCase mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

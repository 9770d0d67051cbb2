package match

import (
	"testing"

	"github.com/dmelo/gram-dispatch/internal/registry"
	"github.com/stretchr/testify/assert"
)

func TestResponse_FirstMatchWins(t *testing.T) {
	rules := []registry.KeywordRule{
		{Keyword: "price", Response: "P1"},
		{Keyword: "pricey", Response: "P2"},
	}

	// "pricey" contains "price", so the earlier rule wins even though the
	// later keyword is a longer match.
	resp, ok := Response("what's the pricey deal", rules)
	assert.True(t, ok)
	assert.Equal(t, "P1", resp)
}

func TestResponse_CaseInsensitive(t *testing.T) {
	rules := []registry.KeywordRule{
		{Keyword: "Shipping", Response: "Ships in 2 days"},
	}

	resp, ok := Response("SHIPPING info please", rules)
	assert.True(t, ok)
	assert.Equal(t, "Ships in 2 days", resp)

	resp, ok = Response("do you ship internationally? shipping?", rules)
	assert.True(t, ok)
	assert.Equal(t, "Ships in 2 days", resp)
}

func TestResponse_Substring(t *testing.T) {
	rules := []registry.KeywordRule{
		{Keyword: "hours", Response: "Open 9-5"},
	}

	resp, ok := Response("what are your hours today", rules)
	assert.True(t, ok)
	assert.Equal(t, "Open 9-5", resp)
}

func TestResponse_NoMatch(t *testing.T) {
	rules := []registry.KeywordRule{
		{Keyword: "price", Response: "P1"},
	}

	resp, ok := Response("hello there", rules)
	assert.False(t, ok)
	assert.Empty(t, resp)
}

func TestResponse_EmptyText(t *testing.T) {
	rules := []registry.KeywordRule{
		{Keyword: "price", Response: "P1"},
	}

	_, ok := Response("", rules)
	assert.False(t, ok)
}

func TestResponse_EmptyTable(t *testing.T) {
	_, ok := Response("price?", nil)
	assert.False(t, ok)
}

func TestResponse_SkipsEmptyKeyword(t *testing.T) {
	rules := []registry.KeywordRule{
		{Keyword: "", Response: "never"},
		{Keyword: "help", Response: "How can we help?"},
	}

	// An empty keyword would match everything; it must be ignored.
	resp, ok := Response("help me out", rules)
	assert.True(t, ok)
	assert.Equal(t, "How can we help?", resp)
}

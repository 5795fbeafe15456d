package fieldparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLines(t *testing.T) {
	assert.Empty(t, Lines(""))
	assert.Empty(t, Lines("\n\n  \n"))
	assert.Equal(t, []string{"Design", "Build"}, Lines("Design\nBuild"))
	assert.Equal(t, []string{"Design", "Build"}, Lines("  Design \r\n\n Build \n"))
}

func TestList(t *testing.T) {
	assert.Empty(t, List(""))
	assert.Equal(t, []string{"Go", "Postgres", "Redis"}, List("Go, Postgres, Redis"))
	assert.Equal(t, []string{"Go", "Postgres", "Redis"}, List("Go\nPostgres\nRedis"))
	assert.Equal(t, []string{"Go", "Postgres"}, List("Go,\n ,Postgres"))
}

func TestPairs(t *testing.T) {
	t.Run("url with caption per line", func(t *testing.T) {
		pairs := Pairs("https://host/a.jpg | Front view\nhttps://host/b.jpg")
		assert.Equal(t, []Pair{
			{Primary: "https://host/a.jpg", Secondary: "Front view"},
			{Primary: "https://host/b.jpg"},
		}, pairs)
	})

	t.Run("blank primary dropped silently", func(t *testing.T) {
		pairs := Pairs(" | orphan caption\nLabel | Value")
		assert.Equal(t, []Pair{{Primary: "Label", Secondary: "Value"}}, pairs)
	})

	t.Run("separator without secondary keeps empty secondary", func(t *testing.T) {
		pairs := Pairs("Label |")
		assert.Equal(t, []Pair{{Primary: "Label", Secondary: ""}}, pairs)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Pairs(""))
	})
}

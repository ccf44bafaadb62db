package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnalysis(t *testing.T) {
	t.Parallel()

	t.Run("plain json", func(t *testing.T) {
		t.Parallel()
		got := parseAnalysis(`{"summary": "s", "tags": ["a", "b"], "category": "Tech", "urgency": 7}`)
		require.NotNil(t, got)
		assert.Equal(t, "s", got.Summary)
		assert.Equal(t, []string{"a", "b"}, got.Tags)
		assert.Equal(t, "Tech", got.Category)
		assert.Equal(t, 7, got.Urgency)
	})

	t.Run("fenced json", func(t *testing.T) {
		t.Parallel()
		raw := "```json\n{\"summary\": \"s\", \"urgency\": 5}\n```"
		got := parseAnalysis(raw)
		require.NotNil(t, got)
		assert.Equal(t, "s", got.Summary)
		assert.Equal(t, 5, got.Urgency)
	})

	t.Run("bare fence", func(t *testing.T) {
		t.Parallel()
		raw := "```\n{\"summary\": \"s\"}\n```"
		got := parseAnalysis(raw)
		require.NotNil(t, got)
		assert.Equal(t, "s", got.Summary)
	})

	t.Run("summary as list", func(t *testing.T) {
		t.Parallel()
		got := parseAnalysis(`{"summary": ["one.", "two."], "urgency": 4}`)
		require.NotNil(t, got)
		assert.Equal(t, "one. two.", got.Summary)
	})

	t.Run("summary as sections", func(t *testing.T) {
		t.Parallel()
		got := parseAnalysis(`{"summary": {"2_end": "two.", "1_start": "one."}, "urgency": 4}`)
		require.NotNil(t, got)
		assert.Equal(t, "one. two.", got.Summary)
	})

	t.Run("unparseable returns nil", func(t *testing.T) {
		t.Parallel()
		assert.Nil(t, parseAnalysis("The article discusses..."))
		assert.Nil(t, parseAnalysis(""))
		assert.Nil(t, parseAnalysis("```json\nnot json\n```"))
	})
}

func TestClampUrgency(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0, clampUrgency(-3))
	assert.Equal(t, 0, clampUrgency(0))
	assert.Equal(t, 1, clampUrgency(1))
	assert.Equal(t, 10, clampUrgency(10))
	assert.Equal(t, 10, clampUrgency(99))
}

func TestStripCodeFences(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{"a":1}`, stripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripCodeFences(`{"a":1}`))
	assert.Equal(t, "", stripCodeFences("  \n "))
}

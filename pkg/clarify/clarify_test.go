package clarify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	t.Run("should parse questions in order", func(t *testing.T) {
		content := `I need a few details first.
<sanbao-clarify>[
  {"id": "q1", "question": "Which party are you?", "type": "select", "options": ["Buyer", "Seller"]},
  {"id": "q2", "question": "Contract date?", "type": "text", "placeholder": "DD.MM.YYYY"}
]</sanbao-clarify>`

		got := Extract(content)
		require.NoError(t, got.Err)
		require.Len(t, got.Questions, 2)

		assert.Equal(t, "q1", got.Questions[0].ID)
		assert.Equal(t, []string{"Buyer", "Seller"}, got.Questions[0].Options)
		assert.True(t, got.Questions[0].IsSelect())
		assert.False(t, got.Questions[0].IsTextInput())
		assert.Nil(t, got.Questions[0].Placeholder)

		assert.Equal(t, "q2", got.Questions[1].ID)
		assert.True(t, got.Questions[1].IsTextInput())
		require.NotNil(t, got.Questions[1].Placeholder)
		assert.Equal(t, "DD.MM.YYYY", *got.Questions[1].Placeholder)
		assert.Nil(t, got.Questions[1].Options)

		assert.Equal(t, "I need a few details first.", got.CleanContent)
	})

	t.Run("should default missing fields", func(t *testing.T) {
		got := Extract(`<sanbao-clarify>[{}]</sanbao-clarify>`)
		require.NoError(t, got.Err)
		require.Len(t, got.Questions, 1)

		q := got.Questions[0]
		assert.Equal(t, Question{Type: TypeSelect}, q)
		assert.True(t, q.IsSelect())
		assert.Empty(t, got.CleanContent)
	})

	t.Run("should fail closed on malformed JSON", func(t *testing.T) {
		for _, body := range []string{`[{"id": "q1",`, `{"id": "q1"}`, `not json`, `[1, 2]`} {
			got := Extract("Keep me\n<sanbao-clarify>" + body + "</sanbao-clarify>")
			assert.Empty(t, got.Questions, body)
			assert.Empty(t, got.CleanContent, body)
			assert.Error(t, got.Err, body)
		}
	})

	t.Run("should leave content without a block unchanged", func(t *testing.T) {
		for _, content := range []string{"", "  just text  ", "<sanbao-clarify>[{}]"} {
			got := Extract(content)
			assert.Empty(t, got.Questions)
			assert.NoError(t, got.Err)
			assert.Equal(t, content, got.CleanContent)
		}
	})

	t.Run("should accept an empty array", func(t *testing.T) {
		got := Extract("text <sanbao-clarify>[]</sanbao-clarify>")
		require.NoError(t, got.Err)
		assert.Empty(t, got.Questions)
		assert.Equal(t, "text", got.CleanContent)
	})
}

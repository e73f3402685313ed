package legal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	t.Run("should parse a single reference", func(t *testing.T) {
		content := "[ст. 15 ГК РК](article://gk_rk/15)"

		assert.True(t, HasReferences(content))
		refs := Extract(content)
		require.Len(t, refs, 1)
		assert.Equal(t, Reference{Code: "gk_rk", Article: "15", DisplayText: "ст. 15 ГК РК"}, refs[0])
		assert.Equal(t, "article://gk_rk/15", refs[0].URI())
	})

	t.Run("should keep document order and duplicates", func(t *testing.T) {
		content := `Under [ст. 9 ГК РК](article://gk_rk/9) and [ст. 15 ГК РК](article://gk_rk/15),
see also [ст. 9 ГК РК](article://gk_rk/9) and [ст. 188 ТК РК](article://tk_rk/188-1).`

		refs := Extract(content)
		require.Len(t, refs, 4)
		assert.Equal(t, []string{"9", "15", "9", "188-1"}, []string{refs[0].Article, refs[1].Article, refs[2].Article, refs[3].Article})
		assert.Equal(t, "tk_rk", refs[3].Code)
		assert.Equal(t, refs[0], refs[2])
	})

	t.Run("should ignore plain text and other links", func(t *testing.T) {
		for _, content := range []string{
			"",
			"Article 15 of the Civil Code",
			"[site](https://adilet.zan.kz/rus/docs/K940001000_)",
			"[broken](article://gk_rk)",
			"[](article://gk_rk/15)",
		} {
			assert.False(t, HasReferences(content), content)
			assert.Empty(t, Extract(content), content)
		}
	})
}

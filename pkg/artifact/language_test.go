package artifact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSniffLanguage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"html doctype", "<!doctype html>\n<p>hi</p>", "html"},
		{"html tag", "<html lang=\"kk\"></html>", "html"},
		{"react import", "import React from 'react'\nexport default () => <div/>", "jsx"},
		{"react named import", `import { useState } from "react"`, "jsx"},
		{"python", "import os\n\ndef main():\n    pass", "python"},
		{"def without import", "def main():\n    pass", DefaultLanguage},
		{"go", "package main\n\nfunc main() {}", "go"},
		{"java", "public class App {\n  public static void main(String[] a) {}\n}", "java"},
		{"fallback", "console.log('hi')", DefaultLanguage},
		{"html wins over react", "<html><script>import React from 'react'</script></html>", "html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SniffLanguage(tt.body))
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	t.Run("should normalize recognized hints", func(t *testing.T) {
		assert.Equal(t, "go", DetectLanguage("golang", "plain text"))
		assert.Equal(t, "python", DetectLanguage("py", "plain text"))
		assert.Equal(t, "javascript", DetectLanguage("JS", "plain text"))
	})

	t.Run("should sniff when the hint is empty or unknown", func(t *testing.T) {
		assert.Equal(t, "python", DetectLanguage("", "import os\ndef f(): pass"))
		assert.Equal(t, "go", DetectLanguage("not-a-language-xyz", "package x\nfunc f() {}"))
	})

	t.Run("should report react sources as jsx", func(t *testing.T) {
		assert.Equal(t, "jsx", DetectLanguage("jsx", "import React from 'react'"))
	})
}

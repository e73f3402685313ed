package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/killallgit/sanbao/pkg/message"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatJSON, formatYAML:
		return nil
	}
	return fmt.Errorf("unsupported format %q (want %s or %s)", format, formatJSON, formatYAML)
}

// writeFinals prints one document per message, in order
func writeFinals(w io.Writer, format string, finals []message.Final) error {
	switch format {
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		for _, f := range finals {
			if err := enc.Encode(f); err != nil {
				return fmt.Errorf("failed to encode yaml: %w", err)
			}
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		for _, f := range finals {
			if err := enc.Encode(f); err != nil {
				return fmt.Errorf("failed to encode json: %w", err)
			}
		}
		return nil
	}
}

package codec

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/workpad/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a command script.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the script format from a file extension. Anything that
// is not .json is read as YAML, which also accepts JSON documents.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// DecodeScript reads a list of envelopes. The document is a bare list, an
// object with a "commands" list, or a single envelope.
func DecodeScript(data []byte, format Format) ([]Envelope, error) {
	var raw any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse json script: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse yaml script: %w", err)
		}
	}

	if obj, ok := raw.(map[string]any); ok {
		if _, single := obj["type"]; single {
			raw = []any{obj}
		} else {
			raw = obj["commands"]
		}
	}
	if raw == nil {
		return []Envelope{}, nil
	}

	var envelopes []Envelope
	if err := decode(raw, &envelopes); err != nil {
		return nil, fmt.Errorf("failed to read script envelopes: %w", err)
	}
	return envelopes, nil
}

// DecodeScriptCommands reads a script and decodes every envelope.
func DecodeScriptCommands(data []byte, format Format) ([]domain.Command, error) {
	envelopes, err := DecodeScript(data, format)
	if err != nil {
		return nil, err
	}

	cmds := make([]domain.Command, 0, len(envelopes))
	for i, env := range envelopes {
		cmd, err := DecodeCommand(env)
		if err != nil {
			return nil, fmt.Errorf("command %d: %w", i, err)
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

package codec

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/aretw0/workpad/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Envelope is the wire form of a command.
type Envelope struct {
	Type    domain.CommandKind `json:"type" yaml:"type" mapstructure:"type"`
	Payload map[string]any     `json:"payload" yaml:"payload" mapstructure:"payload"`
}

// Command decodes the envelope into a typed command.
func (e Envelope) Command() (domain.Command, error) {
	return DecodeCommand(e)
}

// ParseEnvelope decodes a single JSON envelope.
func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("failed to parse command envelope: %w", err)
	}
	return env, nil
}

// DecodeCommand converts an envelope into the matching domain command.
// Unknown types yield domain.ErrUnknownCommand; malformed movements yield
// domain.ErrInvalidMovement.
func DecodeCommand(env Envelope) (domain.Command, error) {
	switch env.Type {
	case domain.KindSetExpression:
		return decodeAs[domain.SetExpression](env)
	case domain.KindSetFilter:
		return decodeAs[domain.SetFilter](env)
	case domain.KindSetMultiplePositions:
		return decodeAs[domain.SetMultiplePositions](env)
	case domain.KindAddElement:
		return decodeAs[domain.AddElement](env)
	case domain.KindDuplicateElement:
		return decodeAs[domain.DuplicateElement](env)
	case domain.KindRemoveElements:
		return decodeAs[domain.RemoveElements](env)
	case domain.KindElementLayer:
		return decodeElementLayer(env)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCommand, env.Type)
}

// EncodeCommand converts a command into its wire envelope.
func EncodeCommand(cmd domain.Command) (Envelope, error) {
	if cmd == nil {
		return Envelope{}, fmt.Errorf("%w: nil command", domain.ErrUnknownCommand)
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s: %w", cmd.Kind(), err)
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return Envelope{}, fmt.Errorf("failed to build %s payload: %w", cmd.Kind(), err)
	}
	return Envelope{Type: cmd.Kind(), Payload: payload}, nil
}

func decodeAs[T domain.Command](env Envelope) (domain.Command, error) {
	var cmd T
	if err := decode(env.Payload, &cmd); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
	}
	return cmd, nil
}

// decodeElementLayer parses the movement by hand so that a malformed value
// surfaces as domain.ErrInvalidMovement rather than a generic decode error.
func decodeElementLayer(env Envelope) (domain.Command, error) {
	movement, err := movementFrom(env.Payload["movement"])
	if err != nil {
		return nil, err
	}

	rest := maps.Clone(env.Payload)
	delete(rest, "movement")

	var cmd domain.ElementLayer
	if err := decode(rest, &cmd); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", env.Type, err)
	}
	cmd.Movement = movement
	return cmd, nil
}

func movementFrom(v any) (domain.Movement, error) {
	var m domain.Movement
	switch val := v.(type) {
	case string:
		return domain.ParseMovement(val)
	case float64:
		m = domain.Movement(val)
	case float32:
		m = domain.Movement(val)
	case int:
		m = domain.Movement(val)
	case int64:
		m = domain.Movement(val)
	case uint64:
		m = domain.Movement(val)
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q", domain.ErrInvalidMovement, val)
		}
		m = domain.Movement(f)
	case domain.Movement:
		m = val
	default:
		return 0, fmt.Errorf("%w: %v (%T)", domain.ErrInvalidMovement, v, v)
	}
	if err := m.Validate(); err != nil {
		return 0, err
	}
	return m, nil
}

func decode(input any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "mapstructure",
		Result:  out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

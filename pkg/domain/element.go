package domain

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/google/uuid"
)

// Position types recognized by the engine. Any other value is treated as an element.
const (
	PositionTypeElement = "element"
	PositionTypeGroup   = "group"
)

// Position places a node on its page. Only Type is interpreted by the engine;
// the geometry is carried as opaque data.
type Position struct {
	Type   string  `json:"type,omitempty" yaml:"type,omitempty" mapstructure:"type"`
	Left   float64 `json:"left" yaml:"left" mapstructure:"left"`
	Top    float64 `json:"top" yaml:"top" mapstructure:"top"`
	Width  float64 `json:"width" yaml:"width" mapstructure:"width"`
	Height float64 `json:"height" yaml:"height" mapstructure:"height"`
	Angle  float64 `json:"angle" yaml:"angle" mapstructure:"angle"`
	Parent *string `json:"parent" yaml:"parent" mapstructure:"parent"`
}

// Element is a positioned visual node. Group nodes share the same shape and
// are distinguished by Position.Type.
type Element struct {
	ID         string   `json:"id" yaml:"id" mapstructure:"id"`
	Position   Position `json:"position" yaml:"position" mapstructure:"position"`
	Expression string   `json:"expression" yaml:"expression" mapstructure:"expression"`
	Filter     string   `json:"filter,omitempty" yaml:"filter,omitempty" mapstructure:"filter"`

	// AST is a legacy cached parse of Expression. It is cleared by every property patch.
	AST any `json:"ast,omitempty" yaml:"ast,omitempty" mapstructure:"ast"`

	// Extra holds every other field of the node. It round-trips inline in JSON.
	Extra map[string]any `json:"-" yaml:",inline" mapstructure:",remain"`
}

// elementKeys are the JSON keys owned by Element's named fields.
var elementKeys = []string{"id", "position", "expression", "filter", "ast"}

// elementFields has Element's layout without its JSON methods.
type elementFields Element

// MarshalJSON encodes the element with Extra fields inlined next to the named ones.
func (e Element) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(elementFields(e))
	if err != nil || len(e.Extra) == 0 {
		return base, err
	}

	merged := make(map[string]json.RawMessage, len(e.Extra)+len(elementKeys))
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range e.Extra {
		if slices.Contains(elementKeys, k) {
			continue
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		merged[k] = raw
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes the named fields and keeps every unknown key in Extra.
func (e *Element) UnmarshalJSON(data []byte) error {
	var fields elementFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range elementKeys {
		delete(all, k)
	}
	fields.Extra = nil
	if len(all) > 0 {
		fields.Extra = all
	}

	*e = Element(fields)
	return nil
}

// Clone returns a copy of the element that does not share its Extra map or Parent pointer.
func (e Element) Clone() Element {
	if e.Extra != nil {
		e.Extra = maps.Clone(e.Extra)
	}
	if e.Position.Parent != nil {
		parent := *e.Position.Parent
		e.Position.Parent = &parent
	}
	return e
}

// IsGroup reports whether the element belongs in the groups collection.
func (e Element) IsGroup() bool {
	return e.Position.Type == PositionTypeGroup
}

// NewElementID returns a fresh element identifier.
func NewElementID() string {
	return "element-" + uuid.NewString()
}

// NewGroupID returns a fresh group identifier.
func NewGroupID() string {
	return "group-" + uuid.NewString()
}

package domain

// CommandKind identifies an edit command on the wire.
type CommandKind string

const (
	KindSetExpression        CommandKind = "setExpression"
	KindSetFilter            CommandKind = "setFilter"
	KindSetMultiplePositions CommandKind = "setMultiplePositions"
	KindElementLayer         CommandKind = "elementLayer"
	KindAddElement           CommandKind = "addElement"
	KindDuplicateElement     CommandKind = "duplicateElement"
	KindRemoveElements       CommandKind = "removeElements"
)

// Kinds lists every command kind the engine handles.
var Kinds = []CommandKind{
	KindSetExpression,
	KindSetFilter,
	KindSetMultiplePositions,
	KindElementLayer,
	KindAddElement,
	KindDuplicateElement,
	KindRemoveElements,
}

// Command is a single discrete edit. Implementations are the value types below.
type Command interface {
	Kind() CommandKind
	command()
}

// SetExpression replaces the expression of one node.
type SetExpression struct {
	PageID     string `json:"pageId" yaml:"pageId" mapstructure:"pageId"`
	ElementID  string `json:"elementId" yaml:"elementId" mapstructure:"elementId"`
	Expression string `json:"expression" yaml:"expression" mapstructure:"expression"`
}

// SetFilter replaces the filter of one node.
type SetFilter struct {
	PageID    string `json:"pageId" yaml:"pageId" mapstructure:"pageId"`
	ElementID string `json:"elementId" yaml:"elementId" mapstructure:"elementId"`
	Filter    string `json:"filter" yaml:"filter" mapstructure:"filter"`
}

// ElementPosition is one entry of a SetMultiplePositions batch.
type ElementPosition struct {
	PageID    string   `json:"pageId" yaml:"pageId" mapstructure:"pageId"`
	ElementID string   `json:"elementId" yaml:"elementId" mapstructure:"elementId"`
	Position  Position `json:"position" yaml:"position" mapstructure:"position"`
}

// SetMultiplePositions repositions several nodes as one state transition.
// Entries are applied in order; unresolvable entries are skipped.
type SetMultiplePositions struct {
	RepositionedElements []ElementPosition `json:"repositionedElements" yaml:"repositionedElements" mapstructure:"repositionedElements"`
}

// ElementLayer moves a node within its collection's stacking order.
type ElementLayer struct {
	PageID    string   `json:"pageId" yaml:"pageId" mapstructure:"pageId"`
	ElementID string   `json:"elementId" yaml:"elementId" mapstructure:"elementId"`
	Movement  Movement `json:"movement" yaml:"movement" mapstructure:"movement"`
}

// AddElement appends a fully formed node to a page.
type AddElement struct {
	PageID  string  `json:"pageId" yaml:"pageId" mapstructure:"pageId"`
	Element Element `json:"element" yaml:"element" mapstructure:"element"`
}

// DuplicateElement appends a copy of a node. The caller supplies the fresh ID.
type DuplicateElement struct {
	PageID  string  `json:"pageId" yaml:"pageId" mapstructure:"pageId"`
	Element Element `json:"element" yaml:"element" mapstructure:"element"`
}

// RemoveElements deletes several nodes from one page as one state transition.
type RemoveElements struct {
	PageID     string   `json:"pageId" yaml:"pageId" mapstructure:"pageId"`
	ElementIDs []string `json:"elementIds" yaml:"elementIds" mapstructure:"elementIds"`
}

func (SetExpression) Kind() CommandKind        { return KindSetExpression }
func (SetFilter) Kind() CommandKind            { return KindSetFilter }
func (SetMultiplePositions) Kind() CommandKind { return KindSetMultiplePositions }
func (ElementLayer) Kind() CommandKind         { return KindElementLayer }
func (AddElement) Kind() CommandKind           { return KindAddElement }
func (DuplicateElement) Kind() CommandKind     { return KindDuplicateElement }
func (RemoveElements) Kind() CommandKind       { return KindRemoveElements }

func (SetExpression) command()        {}
func (SetFilter) command()            {}
func (SetMultiplePositions) command() {}
func (ElementLayer) command()         {}
func (AddElement) command()           {}
func (DuplicateElement) command()     {}
func (RemoveElements) command()       {}

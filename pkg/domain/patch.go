package domain

// Patch is a typed property patch for a single node.
// The set of patches is closed: ExpressionPatch, FilterPatch and PositionPatch.
type Patch interface {
	// Apply merges the patch into el and returns the result.
	Apply(el Element) Element
	patch()
}

// ExpressionPatch replaces a node's expression.
type ExpressionPatch struct {
	Expression string
}

func (p ExpressionPatch) Apply(el Element) Element {
	el.Expression = p.Expression
	return el
}

// FilterPatch replaces a node's filter.
type FilterPatch struct {
	Filter string
}

func (p FilterPatch) Apply(el Element) Element {
	el.Filter = p.Filter
	return el
}

// PositionPatch replaces a node's position.
type PositionPatch struct {
	Position Position
}

func (p PositionPatch) Apply(el Element) Element {
	el.Position = p.Position
	return el
}

func (ExpressionPatch) patch() {}
func (FilterPatch) patch()     {}
func (PositionPatch) patch()   {}

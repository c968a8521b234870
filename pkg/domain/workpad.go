package domain

import "slices"

// Location names one of the two node collections of a Page.
type Location string

const (
	LocationElements Location = "elements"
	LocationGroups   Location = "groups"
)

// LocationFor returns the collection a node with the given position type belongs to.
func LocationFor(positionType string) Location {
	if positionType == PositionTypeGroup {
		return LocationGroups
	}
	return LocationElements
}

// Workpad is the root document: an ordered sequence of pages.
type Workpad struct {
	ID    string `json:"id" yaml:"id" mapstructure:"id"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Pages []Page `json:"pages" yaml:"pages" mapstructure:"pages"`
}

// Page holds two independent, order-significant node collections.
type Page struct {
	ID       string    `json:"id" yaml:"id" mapstructure:"id"`
	Elements []Element `json:"elements" yaml:"elements" mapstructure:"elements"`
	Groups   []Element `json:"groups" yaml:"groups" mapstructure:"groups"`
}

// NewWorkpad creates an empty workpad with the given pages.
func NewWorkpad(id string, pages ...Page) *Workpad {
	if pages == nil {
		pages = []Page{}
	}
	return &Workpad{ID: id, Pages: pages}
}

// NewPage creates a page with empty collections.
func NewPage(id string) Page {
	return Page{ID: id, Elements: []Element{}, Groups: []Element{}}
}

// Nodes returns the collection stored at loc. The result must not be modified.
func (p Page) Nodes(loc Location) []Element {
	if loc == LocationGroups {
		return p.Groups
	}
	return p.Elements
}

// WithNodes returns a copy of the page whose collection at loc is replaced by nodes.
func (p Page) WithNodes(loc Location, nodes []Element) Page {
	if loc == LocationGroups {
		p.Groups = nodes
	} else {
		p.Elements = nodes
	}
	return p
}

// WithPage returns a new workpad whose page at index i is replaced by page.
// Every other page is shared with w.
func (w *Workpad) WithPage(i int, page Page) *Workpad {
	next := *w
	next.Pages = slices.Clone(w.Pages)
	next.Pages[i] = page
	return &next
}

// Clone returns a deep copy of the workpad, sharing only opaque payload values.
// Stores use it to isolate persisted snapshots from their callers.
func (w *Workpad) Clone() *Workpad {
	if w == nil {
		return nil
	}
	next := *w
	next.Pages = make([]Page, len(w.Pages))
	for i, p := range w.Pages {
		next.Pages[i] = Page{
			ID:       p.ID,
			Elements: cloneElements(p.Elements),
			Groups:   cloneElements(p.Groups),
		}
	}
	return &next
}

// NodeCount returns the number of elements and groups across all pages.
func (w *Workpad) NodeCount() (elements, groups int) {
	if w == nil {
		return 0, 0
	}
	for _, p := range w.Pages {
		elements += len(p.Elements)
		groups += len(p.Groups)
	}
	return elements, groups
}

func cloneElements(nodes []Element) []Element {
	if nodes == nil {
		return nil
	}
	out := make([]Element, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

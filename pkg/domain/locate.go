package domain

import "slices"

// PageIndex returns the index of the first page with the given ID, or -1.
func (w *Workpad) PageIndex(pageID string) int {
	if w == nil {
		return -1
	}
	return slices.IndexFunc(w.Pages, func(p Page) bool { return p.ID == pageID })
}

// LocationOf reports which collection of the page holds nodeID.
// Groups are checked first; anything not found there is assumed to live in
// elements, even when it does not exist at all. Callers detect missing nodes
// through the subsequent NodeIndex lookup.
func (w *Workpad) LocationOf(pageID, nodeID string) Location {
	i := w.PageIndex(pageID)
	if i >= 0 && w.Pages[i].NodeIndex(nodeID, LocationGroups) >= 0 {
		return LocationGroups
	}
	return LocationElements
}

// NodeIndex returns the index of nodeID within the collection at loc, or -1.
func (p Page) NodeIndex(nodeID string, loc Location) int {
	return slices.IndexFunc(p.Nodes(loc), func(n Element) bool { return n.ID == nodeID })
}

// FindNode resolves a node by page and node ID, reporting explicitly whether it exists.
func (w *Workpad) FindNode(pageID, nodeID string) (Element, Location, bool) {
	pageIndex := w.PageIndex(pageID)
	if pageIndex < 0 {
		return Element{}, "", false
	}
	page := w.Pages[pageIndex]
	loc := w.LocationOf(pageID, nodeID)
	i := page.NodeIndex(nodeID, loc)
	if i < 0 {
		return Element{}, "", false
	}
	return page.Nodes(loc)[i], loc, true
}

package runtime

import (
	"slices"

	"github.com/aretw0/workpad/pkg/domain"
)

// assignNodeProperties merges patch into one node and returns the new workpad.
// A missing page or node leaves wp untouched and returns it as is.
func assignNodeProperties(wp *domain.Workpad, pageID, nodeID string, patch domain.Patch) *domain.Workpad {
	pageIndex := wp.PageIndex(pageID)
	if pageIndex < 0 {
		return wp
	}

	loc := wp.LocationOf(pageID, nodeID)
	page := wp.Pages[pageIndex]
	nodeIndex := page.NodeIndex(nodeID, loc)
	if nodeIndex < 0 {
		return wp
	}

	nodes := slices.Clone(page.Nodes(loc))
	node := nodes[nodeIndex]

	// A stale AST would describe the old expression; drop it before merging.
	node.AST = nil
	nodes[nodeIndex] = patch.Apply(node)

	return wp.WithPage(pageIndex, page.WithNodes(loc, nodes))
}

// appendNode adds node at the end of the collection matching its position type.
func appendNode(wp *domain.Workpad, pageID string, node domain.Element) *domain.Workpad {
	pageIndex := wp.PageIndex(pageID)
	if pageIndex < 0 {
		return wp
	}

	page := wp.Pages[pageIndex]
	loc := domain.LocationFor(node.Position.Type)
	nodes := append(slices.Clip(page.Nodes(loc)), node)

	return wp.WithPage(pageIndex, page.WithNodes(loc, nodes))
}

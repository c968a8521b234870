package runtime

import (
	"slices"

	"github.com/aretw0/workpad/pkg/domain"
)

// moveNodeLayer moves nodeID within the collection at loc.
// An invalid movement is an error; a missing page or node and a move that
// lands outside the collection are no-ops.
func moveNodeLayer(wp *domain.Workpad, pageID, nodeID string, movement domain.Movement, loc domain.Location) (*domain.Workpad, error) {
	if err := movement.Validate(); err != nil {
		return wp, err
	}

	pageIndex := wp.PageIndex(pageID)
	if pageIndex < 0 {
		return wp, nil
	}

	page := wp.Pages[pageIndex]
	nodes := page.Nodes(loc)
	from := page.NodeIndex(nodeID, loc)
	if from < 0 {
		return wp, nil
	}

	to := movement.Target(from, len(nodes))
	if to < 0 || to > len(nodes)-1 || to == from {
		return wp, nil
	}

	node := nodes[from]
	moved := slices.Delete(slices.Clone(nodes), from, from+1)
	moved = slices.Insert(moved, to, node)

	return wp.WithPage(pageIndex, page.WithNodes(loc, moved)), nil
}

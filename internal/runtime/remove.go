package runtime

import (
	"cmp"
	"slices"

	"github.com/aretw0/workpad/pkg/domain"
)

type nodeRef struct {
	loc   domain.Location
	index int
}

// removeNodes deletes every resolvable id from the page in one transition.
// Targets are resolved against the input snapshot and deleted from the highest
// index down, so no deletion shifts a target that is still pending.
func removeNodes(wp *domain.Workpad, pageID string, nodeIDs []string) *domain.Workpad {
	pageIndex := wp.PageIndex(pageID)
	if pageIndex < 0 {
		return wp
	}
	page := wp.Pages[pageIndex]

	refs := make([]nodeRef, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		loc := wp.LocationOf(pageID, id)
		ref := nodeRef{loc: loc, index: page.NodeIndex(id, loc)}
		if ref.index < 0 || slices.Contains(refs, ref) {
			continue
		}
		refs = append(refs, ref)
	}
	if len(refs) == 0 {
		return wp
	}

	slices.SortStableFunc(refs, func(a, b nodeRef) int {
		return cmp.Compare(b.index, a.index)
	})

	collections := map[domain.Location][]domain.Element{}
	for _, ref := range refs {
		nodes, ok := collections[ref.loc]
		if !ok {
			nodes = slices.Clone(page.Nodes(ref.loc))
		}
		collections[ref.loc] = slices.Delete(nodes, ref.index, ref.index+1)
	}

	for loc, nodes := range collections {
		page = page.WithNodes(loc, nodes)
	}
	return wp.WithPage(pageIndex, page)
}

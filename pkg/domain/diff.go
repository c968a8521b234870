package domain

import (
	"reflect"
	"slices"
)

// WorkpadDiff summarizes the changes between two workpad snapshots.
// It is designed to be serialized to JSON so clients can refresh only what changed.
type WorkpadDiff struct {
	// WorkpadID is always present to identify the target.
	WorkpadID string `json:"workpad_id"`

	PagesAdded   []string   `json:"pages_added,omitempty"`
	PagesRemoved []string   `json:"pages_removed,omitempty"`
	Pages        []PageDiff `json:"pages,omitempty"`
}

// PageDiff lists node-level changes within one page.
type PageDiff struct {
	PageID  string   `json:"page_id"`
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Changed []string `json:"changed,omitempty"`

	// Reordered names the collections whose surviving nodes changed relative order.
	Reordered []Location `json:"reordered,omitempty"`
}

// Diff calculates the difference between oldWp and newWp.
// If oldWp is nil, every page of newWp is reported as added.
// It returns nil when nothing changed.
func Diff(oldWp, newWp *Workpad) *WorkpadDiff {
	if newWp == nil {
		return nil
	}

	diff := &WorkpadDiff{WorkpadID: newWp.ID}

	if oldWp == nil {
		for _, p := range newWp.Pages {
			diff.PagesAdded = append(diff.PagesAdded, p.ID)
		}
		if diff.IsEmpty() {
			return nil
		}
		return diff
	}

	// Identical snapshot pointers share everything.
	if oldWp == newWp {
		return nil
	}

	for _, p := range newWp.Pages {
		i := oldWp.PageIndex(p.ID)
		if i < 0 {
			diff.PagesAdded = append(diff.PagesAdded, p.ID)
			continue
		}
		if pd, changed := diffPage(oldWp.Pages[i], p); changed {
			diff.Pages = append(diff.Pages, pd)
		}
	}

	for _, p := range oldWp.Pages {
		if newWp.PageIndex(p.ID) < 0 {
			diff.PagesRemoved = append(diff.PagesRemoved, p.ID)
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffPage(oldPage, newPage Page) (PageDiff, bool) {
	pd := PageDiff{PageID: newPage.ID}

	for _, loc := range []Location{LocationElements, LocationGroups} {
		oldNodes := oldPage.Nodes(loc)
		newNodes := newPage.Nodes(loc)

		before := make(map[string]Element, len(oldNodes))
		for _, n := range oldNodes {
			before[n.ID] = n
		}
		after := make(map[string]struct{}, len(newNodes))

		var survivorsNew []string
		for _, n := range newNodes {
			after[n.ID] = struct{}{}
			prev, existed := before[n.ID]
			if !existed {
				pd.Added = append(pd.Added, n.ID)
				continue
			}
			survivorsNew = append(survivorsNew, n.ID)
			if !reflect.DeepEqual(prev, n) {
				pd.Changed = append(pd.Changed, n.ID)
			}
		}

		var survivorsOld []string
		for _, n := range oldNodes {
			if _, kept := after[n.ID]; !kept {
				pd.Removed = append(pd.Removed, n.ID)
				continue
			}
			survivorsOld = append(survivorsOld, n.ID)
		}

		if !slices.Equal(survivorsOld, survivorsNew) {
			pd.Reordered = append(pd.Reordered, loc)
		}
	}

	changed := len(pd.Added) > 0 || len(pd.Removed) > 0 || len(pd.Changed) > 0 || len(pd.Reordered) > 0
	return pd, changed
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *WorkpadDiff) IsEmpty() bool {
	return d == nil || (len(d.PagesAdded) == 0 && len(d.PagesRemoved) == 0 && len(d.Pages) == 0)
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/workpad/pkg/domain"
	"github.com/dustin/go-humanize"
)

const maxExpression = 48

// WorkpadMarkdown renders a workpad outline: one section per page with a
// table of its elements and groups in stacking order.
// A zero updated time omits the "last saved" line.
func WorkpadMarkdown(wp *domain.Workpad, updated time.Time) string {
	var b strings.Builder

	title := wp.ID
	if wp.Name != "" {
		title = fmt.Sprintf("%s (%s)", wp.Name, wp.ID)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	elements, groups := 0, 0
	for _, p := range wp.Pages {
		elements += len(p.Elements)
		groups += len(p.Groups)
	}
	fmt.Fprintf(&b, "%s pages, %s elements, %s groups\n\n",
		humanize.Comma(int64(len(wp.Pages))), humanize.Comma(int64(elements)), humanize.Comma(int64(groups)))
	if !updated.IsZero() {
		fmt.Fprintf(&b, "Last saved %s\n\n", humanize.Time(updated))
	}

	for _, p := range wp.Pages {
		fmt.Fprintf(&b, "## Page `%s`\n\n", p.ID)
		if len(p.Elements) == 0 && len(p.Groups) == 0 {
			b.WriteString("_empty_\n\n")
			continue
		}
		b.WriteString("| # | ID | Kind | Position | Parent | Expression |\n")
		b.WriteString("|---|----|------|----------|--------|------------|\n")
		writeRows(&b, p.Elements, "element")
		writeRows(&b, p.Groups, "group")
		b.WriteString("\n")
	}
	return b.String()
}

func writeRows(b *strings.Builder, nodes []domain.Element, kind string) {
	for i, n := range nodes {
		parent := "-"
		if n.Position.Parent != nil {
			parent = *n.Position.Parent
		}
		pos := n.Position
		fmt.Fprintf(b, "| %d | `%s` | %s | %s,%s %sx%s | %s | %s |\n",
			i, n.ID, kind,
			humanize.Ftoa(pos.Left), humanize.Ftoa(pos.Top), humanize.Ftoa(pos.Width), humanize.Ftoa(pos.Height),
			parent, cell(n.Expression))
	}
}

// DiffMarkdown renders the changes of an applied batch as a bullet list.
func DiffMarkdown(d *domain.WorkpadDiff) string {
	if d.IsEmpty() {
		return "_no changes_\n"
	}
	var b strings.Builder
	for _, id := range d.PagesAdded {
		fmt.Fprintf(&b, "- page `%s` added\n", id)
	}
	for _, id := range d.PagesRemoved {
		fmt.Fprintf(&b, "- page `%s` removed\n", id)
	}
	for _, p := range d.Pages {
		fmt.Fprintf(&b, "- page `%s`\n", p.PageID)
		list(&b, "added", p.Added)
		list(&b, "removed", p.Removed)
		list(&b, "changed", p.Changed)
		for _, loc := range p.Reordered {
			fmt.Fprintf(&b, "  - %s reordered\n", loc)
		}
	}
	return b.String()
}

func list(b *strings.Builder, verb string, ids []string) {
	if len(ids) == 0 {
		return
	}
	fmt.Fprintf(b, "  - %s: `%s`\n", verb, strings.Join(ids, "`, `"))
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", `\|`)
	if len([]rune(s)) > maxExpression {
		s = string([]rune(s)[:maxExpression-1]) + "…"
	}
	return s
}

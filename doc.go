/*
Package workpad is a document mutation engine for page-based visual compositions.

A workpad is an ordered list of pages; each page holds two ordered node
collections, elements and groups, whose order is the stacking order. The engine
takes the current workpad and one edit command and returns the next workpad.
It never mutates its input: untouched pages, collections and nodes are shared
between snapshots, and only the path to the change is copied.

# Concept

Edits that reference missing pages or nodes are silent no-ops: the input
snapshot is returned as is. The only command that fails is a layer move with a
malformed movement (domain.ErrInvalidMovement). Batch commands (repositioning
several nodes, removing several nodes) fold over one snapshot and produce a
single resulting state.

The engine holds no document. Keeping the current snapshot, serializing
writers and persisting results belongs to the caller; pkg/session provides a
ready-made single-writer manager on top of the stores in pkg/adapters.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/workpad"
		"github.com/aretw0/workpad/pkg/domain"
	)

	func main() {
		eng := workpad.New()

		wp := domain.NewWorkpad("my-workpad", domain.NewPage("page-1"))

		wp, err := eng.ApplyAll(context.Background(), wp,
			domain.AddElement{PageID: "page-1", Element: domain.Element{ID: "element-1"}},
			domain.SetExpression{PageID: "page-1", ElementID: "element-1", Expression: "demodata | table"},
			domain.ElementLayer{PageID: "page-1", ElementID: "element-1", Movement: domain.MoveToFront},
		)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(wp.Pages[0].Elements[0].Expression)
	}
*/
package workpad

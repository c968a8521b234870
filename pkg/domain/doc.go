/*
Package domain contains the core domain model of the workpad mutation engine.

A Workpad is an ordered sequence of Pages. Each Page owns two ordered node
collections, Elements and Groups, whose order encodes stacking (z-order).
Nodes are addressed by id within a page; the collection that holds a node is
chosen by its Position.Type at creation time.

Values in this package are treated as immutable snapshots. Nothing here
mutates a Workpad in place: helpers such as WithPage and WithNodes return
copies of the path they touch and share everything else.

# Key Entities

  - Workpad, Page, Element: the document tree.
  - Command: a closed set of edit commands (SetExpression, ElementLayer, ...).
  - Patch: a closed set of typed property patches applied to a single node.
  - Movement: a relative or saturating z-order change.
  - WorkpadDiff: a summary of what changed between two snapshots.
*/
package domain
